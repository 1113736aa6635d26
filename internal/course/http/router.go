// Package http exposes the course catalogue behind the service-local
// admission filter and per-route role guards.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/edustack/coursegate/internal/course/store"
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
}

func NewRouter(verifier jwtx.Verifier, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:       http.NewServeMux(),
		verifier:  verifier,
		startTime: time.Now(),
		store:     st,
		logger:    logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.AdmissionMiddleware(r.verifier),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerCourses()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerCourses() {
	h := &CoursesHandler{Store: r.store}

	// Reads need any authenticated caller; writes are admin only.
	r.Mux.Handle("GET /courses",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RequireRoles(),
			httpx.RateLimit(httpx.ModerateLimit, httpx.PrincipalKeyExtractor),
		),
	)

	r.Mux.Handle("GET /courses/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RequireRoles(),
			httpx.RateLimit(httpx.ModerateLimit, httpx.PrincipalKeyExtractor),
		),
	)

	r.Mux.Handle("POST /courses",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RequireRoles(identity.RoleAdmin),
			httpx.RateLimit(httpx.ModerateLimit, httpx.PrincipalKeyExtractor),
		),
	)

	r.Mux.Handle("DELETE /courses/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.RequireRoles(identity.RoleAdmin),
			httpx.RateLimit(httpx.ModerateLimit, httpx.PrincipalKeyExtractor),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler())
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store, r.startTime))
}
