package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/harborline/bms/pkg/jwtx"
	"github.com/harborline/bms/pkg/slogx"
)

// RevocationChecker reports whether an access token has been revoked after
// issuance (logout, account deletion). Checked only after the signature and
// claims validate, so the cache never sees forged tokens.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// AuthnMiddleware authenticates Bearer requests: signature first, then
// issuer/audience/expiry via the verifier, then the revocation list.
// Pass a nil checker to skip revocation lookups.
func AuthnMiddleware(v jwtx.Verifier, revoked RevocationChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("jwt verify failed", "err", err)
				return
			}

			if err := claims.ValidateExpiry(); err != nil {
				writeBearerError(w, "token expired")
				return
			}

			if revoked != nil {
				dead, err := revoked.IsRevoked(ctx, raw)
				if err != nil {
					log.Error("revocation lookup failed", "err", err)
					WriteJSON(w, http.StatusInternalServerError, map[string]string{
						"error": "internal_error",
					})
					return
				}
				if dead {
					writeBearerError(w, "token revoked")
					return
				}
			}

			// Inject into context for downstream handlers.
			ctx = contextWithAuth(ctx, claims, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type rawTokenKey struct{}

func contextWithAuth(ctx context.Context, c jwtx.Claims, raw string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.UID)
	ctx = context.WithValue(ctx, CtxKeyUsername, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	ctx = context.WithValue(ctx, rawTokenKey{}, raw)
	return ctx
}

// RawTokenFromCtx returns the verified bearer token exactly as presented.
// Logout needs it to blacklist the token it arrived with.
func RawTokenFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(rawTokenKey{}).(string); ok {
		return v
	}
	return ""
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
