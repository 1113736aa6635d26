package http

import (
	"errors"
	"net/http"

	"github.com/edustack/coursegate/internal/user/service"
	"github.com/edustack/coursegate/pkg/httpx"
	"github.com/edustack/coursegate/pkg/slogx"
)

type LoginHandler struct {
	Auth *service.AuthenticationService
}

// ServeHTTP exchanges a credential pair for an access/refresh pair. Unknown
// email, wrong password, and disabled account all collapse into the same 401.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = normalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	pair, user, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		default:
			// Covers the session store being down: a signed token without
			// a registered session would be useless, so fail the login.
			log.Error("login failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "could not establish session, try again later")
		}
		return
	}

	projection := toUserResponse(user)

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
		User:         &projection,
	})
}
