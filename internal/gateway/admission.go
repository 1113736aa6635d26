// Package gateway implements the edge: the admission filter with its
// token-store liveness gate, the reverse proxy to the backend services, and
// the prometheus collectors observing both.
package gateway

import (
	"net/http"

	"github.com/edustack/coursegate/internal/tokenstore"
	"github.com/edustack/coursegate/pkg/httpx"
	"github.com/edustack/coursegate/pkg/identity"
	"github.com/edustack/coursegate/pkg/jwtx"
	"github.com/edustack/coursegate/pkg/slogx"
)

// Identity headers injected for upstream services. Inbound values are always
// stripped so a client can never smuggle its own.
const (
	HeaderAuthSubject = "X-Auth-Subject"
	HeaderAuthRole    = "X-Auth-Role"
)

// Filter is the edge admission filter. Fail-open: a missing, malformed,
// expired, or revoked token means the request continues without a principal
// and the per-route guards decide. The one exception is a token store fault,
// which is a retryable 503 rather than a silent "no session" verdict.
type Filter struct {
	Verifier jwtx.Verifier
	Sessions tokenstore.Store
}

// Middleware runs the three gates in sequence: bearer header, signature and
// expiry, then session liveness against the store.
func (f *Filter) Middleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Header.Del(HeaderAuthSubject)
			r.Header.Del(HeaderAuthRole)

			token, ok := httpx.BearerToken(r)
			if !ok {
				admissionOutcomes.WithLabelValues(OutcomeAnonymous).Inc()
				next.ServeHTTP(w, r)
				return
			}

			claims, err := f.Verifier.Verify(token)
			if err != nil {
				admissionOutcomes.WithLabelValues(OutcomeInvalidToken).Inc()
				next.ServeHTTP(w, r)
				return
			}

			role, err := identity.ParseRole(claims.Role)
			if err != nil {
				admissionOutcomes.WithLabelValues(OutcomeInvalidToken).Inc()
				next.ServeHTTP(w, r)
				return
			}

			live, err := tokenstore.SubjectHasSession(r.Context(), f.Sessions, claims.Subject)
			if err != nil {
				// Store down is an infrastructure fault, not an identity
				// verdict.
				admissionOutcomes.WithLabelValues(OutcomeStoreError).Inc()
				slogx.FromContext(r.Context()).Error("session liveness check failed", "err", err)
				httpx.WriteError(w, http.StatusServiceUnavailable, "session check unavailable, try again later")
				return
			}
			if !live {
				admissionOutcomes.WithLabelValues(OutcomeRevoked).Inc()
				next.ServeHTTP(w, r)
				return
			}

			admissionOutcomes.WithLabelValues(OutcomeAuthenticated).Inc()

			p := identity.Principal{Subject: claims.Subject, Role: role}
			r.Header.Set(HeaderAuthSubject, p.Subject)
			r.Header.Set(HeaderAuthRole, string(p.Role))
			next.ServeHTTP(w, r.WithContext(identity.ContextWithPrincipal(r.Context(), p)))
		})
	}
}
