package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/edustack/coursegate/internal/auth"
	"github.com/edustack/coursegate/internal/user/service"
	"github.com/edustack/coursegate/pkg/httpx"
	"github.com/edustack/coursegate/pkg/slogx"
)

type SignupHandler struct {
	Auth *service.AuthenticationService
}

// ServeHTTP parks the signup payload behind a single-use token and queues
// the verification mail. No account exists until the link is followed.
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var payload auth.SignupPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	payload.Email = normalizeEmail(payload.Email)
	payload.PhoneNumber = strings.TrimSpace(payload.PhoneNumber)

	if payload.Email == "" || payload.Password == "" || payload.FirstName == "" {
		httpx.WriteError(w, http.StatusBadRequest, "firstName, email and password are required")
		return
	}

	if err := h.Auth.InitiateSignup(ctx, payload); err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateAccount):
			httpx.WriteError(w, http.StatusConflict, "email or phone number already registered")
		default:
			log.Error("signup failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "could not start signup, try again later")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, MessageResponse{
		Message: "verification mail sent",
	})
}
