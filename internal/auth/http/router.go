package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/harborline/bms/internal/auth/service"
	"github.com/harborline/bms/internal/auth/store"
	"github.com/harborline/bms/pkg/httpx"
	"github.com/harborline/bms/pkg/jwtx"
	"github.com/harborline/bms/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store           store.Store
	TokenService    *service.TokenService
	AccountService  *service.AccountService
	BusinessService *service.BusinessService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerBusinesses()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authn builds the middleware stack for endpoints requiring a valid access
// token: verification, blacklist lookup, then a per-user rate limit.
func (r *Router) authn(limit httpx.RateLimitConfig) []httpx.Middleware {
	return []httpx.Middleware{
		httpx.AuthnMiddleware(r.verifier, r.TokenService),
		httpx.RateLimitByUser(limit),
	}
}

func (r *Router) registerAccounts() {
	h := &AccountHandler{Accounts: r.AccountService, Tokens: r.TokenService}

	// Credential endpoints: strict IP limits against brute force
	r.Mux.Handle("POST /v1/account/register",
		httpx.Chain(http.HandlerFunc(h.Register), httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /v1/account/confirm",
		httpx.Chain(http.HandlerFunc(h.Confirm), httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /v1/account/confirm/resend",
		httpx.Chain(http.HandlerFunc(h.ResendConfirmation), httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /v1/account/login",
		httpx.Chain(http.HandlerFunc(h.Login), httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /v1/account/refresh",
		httpx.Chain(http.HandlerFunc(h.Refresh), httpx.RateLimitByIP(httpx.ModerateLimit)))
	r.Mux.Handle("POST /v1/account/password/forgot",
		httpx.Chain(http.HandlerFunc(h.ForgotPassword), httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /v1/account/password/reset",
		httpx.Chain(http.HandlerFunc(h.ResetPassword), httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("GET /v1/account/username-available",
		httpx.Chain(http.HandlerFunc(h.UsernameAvailable), httpx.RateLimitByIP(httpx.LenientLimit)))

	// Authenticated endpoints
	r.Mux.Handle("POST /v1/account/logout",
		httpx.Chain(http.HandlerFunc(h.Logout), r.authn(httpx.ModerateLimit)...))
	r.Mux.Handle("POST /v1/account/password/change",
		httpx.Chain(http.HandlerFunc(h.ChangePassword), r.authn(httpx.StrictLimit)...))
	r.Mux.Handle("POST /v1/account/delete/request",
		httpx.Chain(http.HandlerFunc(h.RequestDelete), r.authn(httpx.StrictLimit)...))
	r.Mux.Handle("DELETE /v1/account",
		httpx.Chain(http.HandlerFunc(h.Delete), r.authn(httpx.StrictLimit)...))
	r.Mux.Handle("GET /v1/account/me",
		httpx.Chain(http.HandlerFunc(h.Me), r.authn(httpx.LenientLimit)...))
}

func (r *Router) registerBusinesses() {
	h := &BusinessHandler{Businesses: r.BusinessService}

	r.Mux.Handle("POST /v1/businesses",
		httpx.Chain(http.HandlerFunc(h.Create), r.authn(httpx.ModerateLimit)...))
	r.Mux.Handle("GET /v1/businesses",
		httpx.Chain(http.HandlerFunc(h.ListMine), r.authn(httpx.LenientLimit)...))
	r.Mux.Handle("GET /v1/businesses/{id}",
		httpx.Chain(http.HandlerFunc(h.Get), r.authn(httpx.LenientLimit)...))
	r.Mux.Handle("PUT /v1/businesses/{id}",
		httpx.Chain(http.HandlerFunc(h.Update), r.authn(httpx.ModerateLimit)...))
	r.Mux.Handle("DELETE /v1/businesses/{id}",
		httpx.Chain(http.HandlerFunc(h.Delete), r.authn(httpx.ModerateLimit)...))
	r.Mux.Handle("POST /v1/businesses/{id}/activate",
		httpx.Chain(http.HandlerFunc(h.Activate), r.authn(httpx.ModerateLimit)...))

	r.Mux.Handle("GET /v1/businesses/{id}/members",
		httpx.Chain(http.HandlerFunc(h.Members), r.authn(httpx.LenientLimit)...))
	r.Mux.Handle("POST /v1/businesses/{id}/members",
		httpx.Chain(http.HandlerFunc(h.AddMember), r.authn(httpx.ModerateLimit)...))
	r.Mux.Handle("DELETE /v1/businesses/{id}/members/{userID}",
		httpx.Chain(http.HandlerFunc(h.RemoveMember), r.authn(httpx.ModerateLimit)...))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store, r.keys))
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys), httpx.RateLimitByIP(httpx.LenientLimit)))
}
