package gateway

// DefaultRoutes is the edge route table. Auth endpoints are public; user and
// course surfaces require a verified, live session before the request even
// reaches an upstream. Finer role decisions (ADMIN-only writes) stay with the
// services, which run their own filters behind us.
func DefaultRoutes() []Route {
	return []Route{
		{Prefix: "/auth/", Upstream: "user"},
		{Prefix: "/users", Upstream: "user", Authenticated: true},
		{Prefix: "/users/", Upstream: "user", Authenticated: true},
		{Prefix: "/courses", Upstream: "course", Authenticated: true},
		{Prefix: "/courses/", Upstream: "course", Authenticated: true},
	}
}
