package http

import (
	"net/http"

	"github.com/edustack/coursegate/internal/user/service"
	"github.com/edustack/coursegate/pkg/httpx"
	"github.com/edustack/coursegate/pkg/identity"
	"github.com/edustack/coursegate/pkg/slogx"
)

type LogoutHandler struct {
	Auth *service.AuthenticationService
}

// ServeHTTP revokes one of the caller's sessions. The subject comes from the
// verified access token; the route guard upstream guarantees it is present.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := identity.PrincipalFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.Auth.Logout(ctx, p.Subject); err != nil {
		log.Error("logout failed", "err", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "could not revoke session, try again later")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
}
