package httpx

import (
	"net/http"
	"strings"

	"github.com/edustack/coursegate/pkg/identity"
	"github.com/edustack/coursegate/pkg/jwtx"
	"github.com/edustack/coursegate/pkg/slogx"
)

// BearerToken extracts the raw token from the Authorization header.
// Absence of the header is legal (anonymous request), so the second return
// distinguishes "no bearer token" from an empty one.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	if token == "" {
		return "", false
	}
	return token, true
}

// AdmissionMiddleware is the service-local admission filter run inside each
// backend service, independent of the gateway. It verifies signature and
// expiry only (no token-store dependency, so it tolerates store outages) and
// attaches a Principal on success.
//
// The filter is fail-open: a missing, malformed, or expired token never
// rejects the request here. The request simply continues without a principal
// and the per-route guards decide the outcome.
func AdmissionMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("admission: token rejected", "err", err)
				next.ServeHTTP(w, r)
				return
			}

			role, err := identity.ParseRole(claims.Role)
			if err != nil {
				log.Warn("admission: unknown role in token", "role", claims.Role)
				next.ServeHTTP(w, r)
				return
			}

			ctx = identity.ContextWithPrincipal(ctx, identity.Principal{
				Subject: claims.Subject,
				Role:    role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
