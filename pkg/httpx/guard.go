package httpx

import (
	"net/http"

	"github.com/edustack/coursegate/pkg/identity"
)

// RequireRoles is the terminal authorization decision for a route. The
// admission filters never reject; this guard does. No principal attached
// means 401, a principal with the wrong role means 403.
func RequireRoles(roles ...identity.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := identity.PrincipalFromContext(r.Context())
			if !ok {
				writeBearerError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !identity.Authorize(roles, p) {
				writeBearerError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RFC 6750-style error response for bearer auth failures.
func writeBearerError(w http.ResponseWriter, code int, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, code, ErrorResponse{Error: desc})
}
