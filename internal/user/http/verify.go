package http

import (
	"errors"
	"net/http"

	"github.com/edustack/coursegate/internal/auth"
	"github.com/edustack/coursegate/internal/user/service"
	"github.com/edustack/coursegate/pkg/httpx"
	"github.com/edustack/coursegate/pkg/slogx"
)

type VerifyHandler struct {
	Auth *service.AuthenticationService
}

// ServeHTTP redeems the verification link. The token is single use: the
// first click creates the account, later clicks get a 410.
func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := r.URL.Query().Get("token")
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing token parameter")
		return
	}

	u, err := h.Auth.VerifyAndCreate(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenNotFound):
			httpx.WriteError(w, http.StatusGone, "verification link invalid or expired")
		case errors.Is(err, service.ErrDuplicateAccount):
			httpx.WriteError(w, http.StatusConflict, "account already exists")
		default:
			log.Error("verification failed", "err", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "could not complete verification, try again later")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}
