// Package store is the data access boundary for durable user records. The
// auth fabric itself keeps no relational state; this store only exists so
// login can check credentials and verification can create the account.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/edustack/coursegate/pkg/identity"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Account statuses.
const (
	StatusEnabled  = "ENABLE"
	StatusDisabled = "DISABLE"
)

// User is the durable account row. PasswordHash is a PHC-format argon2id
// string, never the plaintext.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PhoneNumber  string
	PasswordHash string
	Role         identity.Role
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email or phone number is taken.
	CreateUser(ctx context.Context, u User) error

	// GetUserByEmail returns a user by email, the subject identifier used
	// across the token fabric.
	GetUserByEmail(ctx context.Context, email string) (User, error)

	// GetUserByPhone returns a user by phone number, used only for the
	// duplicate check before signup mints a correlation token.
	GetUserByPhone(ctx context.Context, phone string) (User, error)

	// ListUsers returns all users, newest first.
	ListUsers(ctx context.Context) ([]User, error)

	// UpdatePasswordHash replaces the credential for the given email and
	// bumps updated_at.
	UpdatePasswordHash(ctx context.Context, email, newHash string) error
}
