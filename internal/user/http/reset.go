package http

import (
	"errors"
	"net/http"

	"github.com/edustack/coursegate/internal/auth"
	"github.com/edustack/coursegate/internal/user/service"
	"github.com/edustack/coursegate/pkg/httpx"
	"github.com/edustack/coursegate/pkg/slogx"
)

type ResetRequestHandler struct {
	Auth *service.AuthenticationService
}

// ServeHTTP starts the reset workflow. An unknown email is reported as 404
// at this boundary rather than silently swallowed.
func (h *ResetRequestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req ResetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = normalizeEmail(req.Email)
	if req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.Auth.SendResetLink(ctx, req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownEmail):
			httpx.WriteError(w, http.StatusNotFound, "no account for that email")
		default:
			log.Error("reset request failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "could not start reset, try again later")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, MessageResponse{Message: "reset mail sent"})
}

type ResetConfirmHandler struct {
	Auth *service.AuthenticationService
}

// ServeHTTP redeems the reset token and installs the new password.
func (h *ResetConfirmHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := r.URL.Query().Get("token")
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing token parameter")
		return
	}

	var req ResetConfirmRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "password is required")
		return
	}

	if err := h.Auth.ResetPassword(ctx, token, req.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenNotFound):
			httpx.WriteError(w, http.StatusGone, "reset link invalid or expired")
		default:
			log.Error("reset confirm failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "could not reset password, try again later")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "password updated"})
}
