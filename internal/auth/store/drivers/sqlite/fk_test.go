package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harborline/bms/internal/auth/domain"
	"github.com/harborline/bms/internal/auth/store"
	"github.com/harborline/bms/pkg/idx"
)

// Foreign keys are a per-connection setting in sqlite. This test pins the
// connection that served the setup statements and then deletes the user, so
// the DELETE runs on a second pool connection; the cascades must still fire
// there.
func TestDeleteUser_CascadesOnEveryPoolConnection(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()

	u := domain.User{
		ID:           idx.New().String(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	biz := domain.Business{ID: idx.New().String(), Name: "Corner Cafe"}
	require.NoError(t, s.Businesses().CreateBusiness(ctx, biz))
	require.NoError(t, s.Memberships().CreateMembership(ctx, domain.Membership{
		ID: idx.New().String(), BusinessID: biz.ID, UserID: u.ID, Role: domain.RoleSuperOwner,
	}))
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: "fp-alice",
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}))

	// Hold the idle connection so the statements below open a fresh one.
	conn, err := s.db.Conn(ctx)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, s.Users().DeleteUser(ctx, u.ID))

	_, err = s.Memberships().GetMembership(ctx, biz.ID, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, "fp-alice")
	require.ErrorIs(t, err, store.ErrNotFound)

	// The business itself is not a dependent of the user
	_, err = s.Businesses().GetBusinessByID(ctx, biz.ID)
	require.NoError(t, err)
}
