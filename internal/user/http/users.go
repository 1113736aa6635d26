package http

import (
	"errors"
	"net/http"

	"github.com/edustack/coursegate/internal/user/store"
	"github.com/edustack/coursegate/pkg/httpx"
	"github.com/edustack/coursegate/pkg/identity"
	"github.com/edustack/coursegate/pkg/slogx"
)

type ListUsersHandler struct {
	Store store.Store
}

// ServeHTTP lists all accounts. The ADMIN guard runs upstream.
func (h *ListUsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	users, err := h.Store.Users().ListUsers(ctx)
	if err != nil {
		log.Error("list users failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not list users")
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, out)
}

type MeHandler struct {
	Store store.Store
}

// ServeHTTP returns the caller's own account row.
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := identity.PrincipalFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	u, err := h.Store.Users().GetUserByEmail(ctx, p.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Token outlived the account.
			httpx.WriteError(w, http.StatusNotFound, "account no longer exists")
			return
		}
		log.Error("load account failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not load account")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}
