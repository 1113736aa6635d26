// Package memory is a mutex-guarded in-process token store. It backs unit
// tests and local development where a Redis instance is overkill. TTL
// semantics match the redis driver: expired entries are gone the moment
// anyone looks.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/edustack/coursegate/internal/tokenstore"
)

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

type Store struct {
	mu      sync.Mutex
	entries map[string]entry
}

var _ tokenstore.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{entries: make(map[string]entry)}
}

func (s *Store) Put(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	s.entries[key] = entry{value: value, expiresAt: expiresAt}
	return nil
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.expired(time.Now()) {
		delete(s.entries, key)
		return "", tokenstore.ErrNotFound
	}
	return e.value, nil
}

// GetDel removes and returns the entry under a single lock hold, so exactly
// one of any number of concurrent redeemers wins.
func (s *Store) GetDel(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.expired(time.Now()) {
		delete(s.entries, key)
		return "", tokenstore.ErrNotFound
	}
	delete(s.entries, key)
	return e.value, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *Store) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var keys []string
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
