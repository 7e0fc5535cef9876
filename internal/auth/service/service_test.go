package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harborline/bms/internal/auth/cache/memory"
	"github.com/harborline/bms/internal/auth/domain"
	"github.com/harborline/bms/internal/auth/store"
	"github.com/harborline/bms/internal/auth/store/drivers/sqlite"
	"github.com/harborline/bms/pkg/cryptox"
	"github.com/harborline/bms/pkg/jwtx"
	"github.com/harborline/bms/pkg/slogx"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "service-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

// capturingSender records outbound mail so tests can pull codes out of it.
type capturingSender struct {
	to      []string
	subject []string
	body    []string
}

func (c *capturingSender) Send(ctx context.Context, to, subject, body string) error {
	c.to = append(c.to, to)
	c.subject = append(c.subject, subject)
	c.body = append(c.body, body)
	return nil
}

type harness struct {
	Store    store.Store
	Tokens   *TokenService
	OTP      *OTPService
	Accounts *AccountService
	Business *BusinessService
	Mail     *capturingSender
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:   "https://auth.test",
		Audience: []string{"bms"},
		NumKeys:  1,
	})
	require.NoError(t, err)

	c := memory.New()

	tokens := &TokenService{
		KeyManager: km,
		Store:      s,
		Blacklist:  c,
		Issuer:     "https://auth.test",
		Audience:   []string{"bms"},
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
	otp := NewOTPService(c, DefaultOTPTTL)
	mail := &capturingSender{}

	return &harness{
		Store:    s,
		Tokens:   tokens,
		OTP:      otp,
		Accounts: &AccountService{Store: s, Tokens: tokens, OTP: otp, Email: mail},
		Business: &BusinessService{Store: s},
		Mail:     mail,
	}
}

// registerConfirmed registers a user and walks it through email confirmation.
func (h *harness) registerConfirmed(t *testing.T, username, password string) domain.User {
	t.Helper()
	ctx := context.Background()

	u, err := h.Accounts.Register(ctx, username, username+"@example.com", password)
	require.NoError(t, err)

	code, err := h.OTP.Cache.Get(ctx, otpKey(OTPPurposeConfirm, u.Email))
	require.NoError(t, err)
	require.NoError(t, h.Accounts.ConfirmEmail(ctx, u.Email, code))

	return u
}

func TestHousekeeping_StartStop(t *testing.T) {
	h := newHarness(t)

	hk := NewHousekeepingService(h.Store, slogx.New(slogx.Config{Level: "error"}), time.Hour)
	hk.Start()
	hk.Stop()
}
