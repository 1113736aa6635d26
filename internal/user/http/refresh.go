package http

import (
	"errors"
	"net/http"

	"github.com/edustack/coursegate/internal/auth"
	"github.com/edustack/coursegate/internal/user/service"
	"github.com/edustack/coursegate/pkg/httpx"
	"github.com/edustack/coursegate/pkg/slogx"
)

type RefreshHandler struct {
	Auth *service.AuthenticationService
}

// ServeHTTP exchanges a live refresh id for a fresh access token. Unlike the
// fail-open admission filter, a dead session here is an explicit 401.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	access, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidRefresh):
			httpx.WriteError(w, http.StatusUnauthorized, "refresh token invalid or expired")
		default:
			log.Error("refresh failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "could not refresh session, try again later")
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.Auth.Tokens.AccessTokenTTL().Seconds()),
	})
}
