package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/harborline/bms/internal/auth/cache"
	"github.com/harborline/bms/internal/auth/domain"
	"github.com/harborline/bms/internal/auth/store"
	"github.com/harborline/bms/pkg/cryptox"
	"github.com/harborline/bms/pkg/idx"
	"github.com/harborline/bms/pkg/jwtx"
	"github.com/harborline/bms/pkg/slogx"
)

// TokenService issues access/refresh pairs, rotates refresh tokens, and
// maintains the access-token blacklist.
type TokenService struct {
	KeyManager *jwtx.KeyManager
	Store      store.Store
	Blacklist  cache.Cache
	Issuer     string
	Audience   []string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssuePair signs a fresh access token and mints a new refresh token for the
// user. Only the refresh token's fingerprint is stored.
func (s *TokenService) IssuePair(ctx context.Context, user domain.User) (*domain.TokenPair, error) {
	now := time.Now().UTC()

	accessToken, err := s.signAccess(user, now)
	if err != nil {
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	refresh := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		ExpiresAt: now.Add(s.RefreshTTL),
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, refresh); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// Refresh rotates a refresh token: the presented token is consumed (flagged
// used, never deleted) and a new pair is issued. Consumption is a
// compare-and-swap inside a transaction, so two concurrent redemptions of
// the same token yield exactly one new pair and one ErrInvalidRefresh.
func (s *TokenService) Refresh(ctx context.Context, refreshOpaque string) (*domain.TokenPair, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	fingerprint := cryptox.FingerprintToken(refreshOpaque)

	var pair *domain.TokenPair
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, fingerprint)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}

		if !current.Live(now) {
			if current.Used {
				// Replay of an already-rotated token. Worth logging: it is
				// either a duplicated client request or a stolen token.
				l.Warn("refresh token replay detected",
					slog.String("user_id", current.UserID))
			}
			return ErrInvalidRefresh
		}

		if err := tx.RefreshTokens().ConsumeRefreshToken(ctx, fingerprint); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}

		user, err := tx.Users().GetUserByID(ctx, current.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}

		accessToken, err := s.signAccess(user, now)
		if err != nil {
			return err
		}

		nextOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return err
		}
		next := domain.RefreshToken{
			ID:        idx.New().String(),
			UserID:    user.ID,
			TokenHash: cryptox.FingerprintToken(nextOpaque),
			ExpiresAt: now.Add(s.RefreshTTL),
		}
		if err := tx.RefreshTokens().CreateRefreshToken(ctx, next); err != nil {
			return err
		}

		pair = &domain.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: nextOpaque,
			TokenType:    "Bearer",
			ExpiresIn:    s.AccessTTL,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// RevokeAccess blacklists a verified access token for its remaining
// lifetime. The entry expires with the token, so the blacklist never grows
// past one access-TTL worth of logouts.
func (s *TokenService) RevokeAccess(ctx context.Context, rawToken string, claims jwtx.Claims) error {
	ttl := claims.RemainingTTL(time.Now().UTC())
	if ttl <= 0 {
		return nil // already dead
	}
	return s.Blacklist.Set(ctx, blacklistKey(rawToken), "1", ttl)
}

// IsRevoked implements httpx.RevocationChecker.
func (s *TokenService) IsRevoked(ctx context.Context, rawToken string) (bool, error) {
	return s.Blacklist.Exists(ctx, blacklistKey(rawToken))
}

// RetireOneSession removes one live refresh token for the user, if any.
// Logout calls this; a user with no open session is not an error.
func (s *TokenService) RetireOneSession(ctx context.Context, userID string) error {
	tok, err := s.Store.RefreshTokens().GetLiveTokenForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	err = s.Store.RefreshTokens().DeleteRefreshToken(ctx, tok.TokenHash)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// RetireAllSessions revokes every refresh token the user holds. Used after
// password resets and account deletion.
func (s *TokenService) RetireAllSessions(ctx context.Context, userID string) error {
	return s.Store.RefreshTokens().RevokeAllUserRefreshTokens(ctx, userID)
}

func (s *TokenService) signAccess(user domain.User, now time.Time) (string, error) {
	signer := s.KeyManager.GetSigner()
	if signer == nil {
		return "", errors.New("service: no signing key available")
	}

	claims := jwtx.NewAccessClaims(
		user.Username,
		user.ID,
		s.AccessTTL,
		s.Issuer,
		s.Audience,
		now,
	)
	return signer.Sign(claims)
}

func blacklistKey(rawToken string) string {
	// Fingerprint keeps cache keys short and avoids storing raw credentials.
	return "blacklist:" + cryptox.FingerprintToken(rawToken)
}
