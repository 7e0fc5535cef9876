package http

import (
	"net/http"
	"time"

	"github.com/harborline/bms/internal/auth/store"
	"github.com/harborline/bms/pkg/httpx"
	"github.com/harborline/bms/pkg/jwtx"
	"github.com/harborline/bms/pkg/slogx"
)

// JWKSHandler publishes the public signing keys so other services can verify
// access tokens locally.
func JWKSHandler(keys *jwtx.KeySet) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, keys.PublicJWKS())
	})
}

// LivezHandler reports process liveness. It never touches dependencies.
func LivezHandler(startTime time.Time, version string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"version": version,
			"uptime":  time.Since(startTime).Round(time.Second).String(),
		})
	})
}

// ReadyzHandler reports readiness: the database answers a ping and at least
// one signing key is loaded.
func ReadyzHandler(st store.Store, keys *jwtx.KeySet) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := st.Ping(ctx); err != nil {
			slogx.FromContext(ctx).Error("readiness ping failed", "err", err)
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"reason": "database unreachable",
			})
			return
		}
		if !keys.IsReady() {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"reason": "signing keys not loaded",
			})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
}
