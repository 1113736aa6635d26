// Package tokenstore defines the shared key-value cache that the gateway and
// both downstream services trust for session liveness and single-use
// correlation tokens. TTL expiry is store-enforced: entries vanish on their
// own and no component polls for expiry.
package tokenstore

import (
	"context"
	"errors"
	"time"
)

// Key namespaces. Every entry in the shared cache is prefixed by purpose so
// the stores of independently deployed services never collide.
const (
	// PrefixRefresh maps an opaque refresh id to its subject. Possession of
	// a live entry is proof of an active session.
	PrefixRefresh = "REFRESH:"

	// PrefixSignup holds the serialized pending registration payload keyed
	// by a single-use correlation token.
	PrefixSignup = "SIGNUP:"

	// PrefixReset holds the target email of a pending password reset keyed
	// by a single-use correlation token.
	PrefixReset = "RESET_TOKEN:"
)

var (
	// ErrNotFound reports an absent (or already expired/consumed) key.
	ErrNotFound = errors.New("tokenstore: not found")
)

// Store is the minimal cache contract. Any failure other than ErrNotFound is
// an infrastructure fault and must be surfaced as retryable, never
// interpreted as "no session" or "token invalid".
type Store interface {
	// Put records key=value with a store-enforced TTL.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the live value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// GetDel atomically fetches and deletes key. Concurrent callers resolve
	// so exactly one receives the value and the rest get ErrNotFound; this
	// is what makes correlation tokens single-use.
	GetDel(ctx context.Context, key string) (string, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists all live keys with the given prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
