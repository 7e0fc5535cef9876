package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harborline/bms/internal/auth/domain"
	"github.com/harborline/bms/internal/auth/store"
	"github.com/harborline/bms/internal/auth/store/drivers/sqlite"
	"github.com/harborline/bms/pkg/idx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestUser(t *testing.T, s store.Store, username string) domain.User {
	t.Helper()

	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestUsers_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "alice")

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.False(t, got.EmailConfirmed)
	require.Nil(t, got.ActiveBusiness)

	got, err = s.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	got, err = s.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	require.NoError(t, s.Users().ConfirmEmail(ctx, u.ID))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.EmailConfirmed)

	exists, err := s.Users().UsernameExists(ctx, "alice")
	require.NoError(t, err)
	require.True(t, exists)
	exists, err = s.Users().UsernameExists(ctx, "bob")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, s.Users().DeleteUser(ctx, u.ID))
	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	newTestUser(t, s, "alice")
	err := s.Users().CreateUser(ctx, domain.User{
		ID:           idx.New().String(),
		Username:     "alice",
		Email:        "other@example.com",
		PasswordHash: "x",
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestRefreshTokens_ConsumeIsSingleUse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "alice")

	tok := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: "fingerprint-1",
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, tok))

	require.NoError(t, s.RefreshTokens().ConsumeRefreshToken(ctx, "fingerprint-1"))

	// Second consumption of the same token must fail
	err := s.RefreshTokens().ConsumeRefreshToken(ctx, "fingerprint-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	// The row is kept, flagged used
	got, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "fingerprint-1")
	require.NoError(t, err)
	require.True(t, got.Used)
	require.False(t, got.Revoked)
}

func TestRefreshTokens_RevokeAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "alice")

	for i, hash := range []string{"fp-a", "fp-b"} {
		require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			ID:        idx.NewAt(time.Now().Add(time.Duration(i) * time.Millisecond)).String(),
			UserID:    u.ID,
			TokenHash: hash,
			ExpiresAt: time.Now().Add(time.Hour).UTC(),
		}))
	}

	require.NoError(t, s.RefreshTokens().RevokeAllUserRefreshTokens(ctx, u.ID))

	for _, hash := range []string{"fp-a", "fp-b"} {
		require.ErrorIs(t, s.RefreshTokens().ConsumeRefreshToken(ctx, hash), store.ErrNotFound)
	}
	_, err := s.RefreshTokens().GetLiveTokenForUser(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRefreshTokens_DeleteExpired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "alice")

	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: "fp-old",
		ExpiresAt: time.Now().Add(-time.Hour).UTC(),
	}))
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: "fp-live",
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}))

	require.NoError(t, s.RefreshTokens().DeleteExpiredRefreshTokens(ctx))

	_, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "fp-old")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, "fp-live")
	require.NoError(t, err)
}

func TestMemberships_List(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := newTestUser(t, s, "owner")
	emp := newTestUser(t, s, "worker")

	biz := domain.Business{ID: idx.New().String(), Name: "Corner Cafe"}
	require.NoError(t, s.Businesses().CreateBusiness(ctx, biz))

	require.NoError(t, s.Memberships().CreateMembership(ctx, domain.Membership{
		ID: idx.New().String(), BusinessID: biz.ID, UserID: owner.ID, Role: domain.RoleSuperOwner,
	}))
	require.NoError(t, s.Memberships().CreateMembership(ctx, domain.Membership{
		ID: idx.New().String(), BusinessID: biz.ID, UserID: emp.ID, Role: domain.RoleEmployee,
	}))

	// Duplicate membership rejected
	err := s.Memberships().CreateMembership(ctx, domain.Membership{
		ID: idx.New().String(), BusinessID: biz.ID, UserID: emp.ID, Role: domain.RoleOwner,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	members, err := s.Memberships().ListMembers(ctx, biz.ID, []domain.BusinessRole{domain.RoleEmployee})
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "worker", members[0].Username)

	members, err = s.Memberships().ListMembers(ctx, biz.ID, nil)
	require.NoError(t, err)
	require.Empty(t, members, "empty role filter returns nothing")

	summaries, err := s.Memberships().ListUserBusinesses(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, "Corner Cafe", summaries[0].Name)
	require.Equal(t, domain.RoleSuperOwner, summaries[0].Role)
}

func TestMemberships_CascadeOnBusinessDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := newTestUser(t, s, "owner")
	biz := domain.Business{ID: idx.New().String(), Name: "Corner Cafe"}
	require.NoError(t, s.Businesses().CreateBusiness(ctx, biz))
	require.NoError(t, s.Memberships().CreateMembership(ctx, domain.Membership{
		ID: idx.New().String(), BusinessID: biz.ID, UserID: owner.ID, Role: domain.RoleSuperOwner,
	}))

	require.NoError(t, s.Businesses().DeleteBusiness(ctx, biz.ID))

	_, err := s.Memberships().GetMembership(ctx, biz.ID, owner.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	errBoom := context.DeadlineExceeded
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, domain.User{
			ID: idx.New().String(), Username: "ghost", Email: "ghost@example.com", PasswordHash: "x",
		}); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	_, err = s.Users().GetUserByUsername(ctx, "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, domain.User{
			ID: idx.New().String(), Username: "kept", Email: "kept@example.com", PasswordHash: "x",
		})
	})
	require.NoError(t, err)

	_, err = s.Users().GetUserByUsername(ctx, "kept")
	require.NoError(t, err)
}
