// Package identity carries the request-scoped authenticated principal between
// the admission filters and route guards. A Principal is ephemeral: it is
// attached to a request context after a filter verifies a token and is never
// persisted anywhere.
package identity

import (
	"errors"
	"strings"
)

// Role is the single authorization role carried in access tokens.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ErrUnknownRole reports a role string that isn't part of the enum.
var ErrUnknownRole = errors.New("identity: unknown role")

// ParseRole maps a token claim string onto the Role enum. Unknown values are
// rejected rather than defaulted so a forged or future role never widens
// access.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", ErrUnknownRole
	}
}

// Principal is the verified identity a request carries after passing an
// admission filter.
type Principal struct {
	Subject string
	Role    Role
}

// Authorize is the single capability check evaluated per route: the principal
// must hold one of the required roles. An empty required list means any
// authenticated principal is allowed.
func Authorize(required []Role, p Principal) bool {
	if p.Subject == "" {
		return false
	}
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if p.Role == r {
			return true
		}
	}
	return false
}
