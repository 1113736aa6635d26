// Package http wires the user service's handlers onto a ServeMux with the
// shared middleware stack: request logging, the service-local admission
// filter, per-route role guards, and rate limits on credential endpoints.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/edustack/coursegate/internal/user/service"
	"github.com/edustack/coursegate/internal/user/store"
	"github.com/edustack/coursegate/pkg/httpx"
	"github.com/edustack/coursegate/pkg/identity"
	"github.com/edustack/coursegate/pkg/jwtx"
	"github.com/edustack/coursegate/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier  jwtx.Verifier
	startTime time.Time
	logger    *slog.Logger

	store store.Store
	Auth  *service.AuthenticationService
}

func NewRouter(verifier jwtx.Verifier, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:       http.NewServeMux(),
		verifier:  verifier,
		startTime: time.Now(),
		store:     st,
		logger:    logger,
	}

	// Admission runs globally and fail-open: a bad token just means an
	// anonymous request. Guards on individual routes produce the 401/403s.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.AdmissionMiddleware(r.verifier),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// Credential and token-minting endpoints get the strict per-IP limit.
	r.Mux.Handle("POST /auth/signup",
		httpx.Chain(&SignupHandler{Auth: r.Auth},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("GET /auth/verify",
		httpx.Chain(&VerifyHandler{Auth: r.Auth},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /auth/login",
		httpx.Chain(&LoginHandler{Auth: r.Auth},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(&RefreshHandler{Auth: r.Auth},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// Logout needs a verified caller: the subject to revoke comes from the
	// access token, not the request body.
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(&LogoutHandler{Auth: r.Auth},
			httpx.RequireRoles(),
			httpx.RateLimit(httpx.ModerateLimit, httpx.PrincipalKeyExtractor),
		),
	)

	r.Mux.Handle("POST /auth/reset",
		httpx.Chain(&ResetRequestHandler{Auth: r.Auth},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /auth/reset/confirm",
		httpx.Chain(&ResetConfirmHandler{Auth: r.Auth},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	r.Mux.Handle("GET /users",
		httpx.Chain(&ListUsersHandler{Store: r.store},
			httpx.RequireRoles(identity.RoleAdmin),
			httpx.RateLimit(httpx.ModerateLimit, httpx.PrincipalKeyExtractor),
		),
	)

	r.Mux.Handle("GET /users/me",
		httpx.Chain(&MeHandler{Store: r.store},
			httpx.RequireRoles(),
			httpx.RateLimit(httpx.ModerateLimit, httpx.PrincipalKeyExtractor),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler())
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store, r.startTime))
}
