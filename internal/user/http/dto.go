package http

import (
	"strings"

	"github.com/edustack/coursegate/internal/user/store"
)

// LoginRequest carries the credential pair.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is the pair handed back on login, and (without the refresh
// and user fields) on refresh. Login includes the account projection so the
// client does not need a follow-up /users/me round trip.
type TokenResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken,omitempty"`
	TokenType    string        `json:"tokenType"`
	ExpiresIn    int64         `json:"expiresIn"`
	User         *UserResponse `json:"user,omitempty"`
}

// RefreshRequest carries the opaque refresh id.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ResetRequest starts the password reset workflow.
type ResetRequest struct {
	Email string `json:"email"`
}

// ResetConfirmRequest carries the replacement password; the token arrives
// as a query parameter, mirroring the link in the mail.
type ResetConfirmRequest struct {
	Password string `json:"password"`
}

// UserResponse is the public projection of a durable account row. The
// password hash never leaves the service.
type UserResponse struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
}

func toUserResponse(u store.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        string(u.Role),
		Status:      u.Status,
		CreatedAt:   u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// MessageResponse is the generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
