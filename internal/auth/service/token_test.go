package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harborline/bms/internal/auth/store"
	"github.com/harborline/bms/pkg/cryptox"
)

func TestIssuePairAndRefresh(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	user := h.registerConfirmed(t, "alice", "s3cret-pass")

	pair, err := h.Tokens.IssuePair(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "Bearer", pair.TokenType)

	// Access token verifies and carries the right identity
	claims, err := h.Tokens.KeyManager.Verifier.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, user.ID, claims.UID)
	require.NotEmpty(t, claims.ID)

	// Rotation yields a fresh pair
	next, err := h.Tokens.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The old refresh row still exists, flagged used
	old, err := h.Store.RefreshTokens().GetRefreshTokenByHash(
		ctx, cryptox.FingerprintToken(pair.RefreshToken))
	require.NoError(t, err)
	require.True(t, old.Used)
}

func TestRefresh_ReplayRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	user := h.registerConfirmed(t, "alice", "s3cret-pass")
	pair, err := h.Tokens.IssuePair(ctx, user)
	require.NoError(t, err)

	_, err = h.Tokens.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	// Presenting the consumed token again must fail
	_, err = h.Tokens.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefresh_ConcurrentRotationHasOneWinner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	user := h.registerConfirmed(t, "alice", "s3cret-pass")
	pair, err := h.Tokens.IssuePair(ctx, user)
	require.NoError(t, err)

	// Two redemptions of the same token race; the consume CAS lets exactly
	// one through and the other sees a used token.
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := h.Tokens.Refresh(ctx, pair.RefreshToken)
			errs <- err
		}()
	}

	var won, rejected int
	for i := 0; i < 2; i++ {
		if err := <-errs; err == nil {
			won++
		} else {
			require.ErrorIs(t, err, ErrInvalidRefresh)
			rejected++
		}
	}
	require.Equal(t, 1, won)
	require.Equal(t, 1, rejected)
}

func TestRefresh_UnknownToken(t *testing.T) {
	h := newHarness(t)

	_, err := h.Tokens.Refresh(context.Background(), "never-issued")
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefresh_RevokedToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	user := h.registerConfirmed(t, "alice", "s3cret-pass")
	pair, err := h.Tokens.IssuePair(ctx, user)
	require.NoError(t, err)

	require.NoError(t, h.Tokens.RetireAllSessions(ctx, user.ID))

	_, err = h.Tokens.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRevokeAccess_Blacklists(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	user := h.registerConfirmed(t, "alice", "s3cret-pass")
	pair, err := h.Tokens.IssuePair(ctx, user)
	require.NoError(t, err)

	claims, err := h.Tokens.KeyManager.Verifier.Verify(pair.AccessToken)
	require.NoError(t, err)

	revoked, err := h.Tokens.IsRevoked(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, h.Tokens.RevokeAccess(ctx, pair.AccessToken, claims))

	revoked, err = h.Tokens.IsRevoked(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.True(t, revoked)

	// Other tokens are unaffected
	revoked, err = h.Tokens.IsRevoked(ctx, "some-other-token")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestRetireOneSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	user := h.registerConfirmed(t, "alice", "s3cret-pass")
	pair, err := h.Tokens.IssuePair(ctx, user)
	require.NoError(t, err)

	require.NoError(t, h.Tokens.RetireOneSession(ctx, user.ID))

	// The session's refresh token is gone entirely
	_, err = h.Store.RefreshTokens().GetRefreshTokenByHash(
		ctx, cryptox.FingerprintToken(pair.RefreshToken))
	require.ErrorIs(t, err, store.ErrNotFound)

	// Retiring with no open session is fine
	require.NoError(t, h.Tokens.RetireOneSession(ctx, user.ID))
}
