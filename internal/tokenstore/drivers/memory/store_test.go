package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/edustack/coursegate/internal/tokenstore"
	"github.com/stretchr/testify/require"
)

func TestPutGetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Put(ctx, "REFRESH:r1", "alice@example.com", time.Hour))

	got, err := s.Get(ctx, "REFRESH:r1")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", got)

	require.NoError(t, s.Delete(ctx, "REFRESH:r1"))
	_, err = s.Get(ctx, "REFRESH:r1")
	require.ErrorIs(t, err, tokenstore.ErrNotFound)

	// Deleting an absent key is fine.
	require.NoError(t, s.Delete(ctx, "REFRESH:r1"))
}

func TestTTLExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Put(ctx, "SIGNUP:t1", "payload", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := s.Get(ctx, "SIGNUP:t1")
	require.ErrorIs(t, err, tokenstore.ErrNotFound)

	keys, err := s.Keys(ctx, "SIGNUP:")
	require.NoError(t, err)
	require.Empty(t, keys, "expired entries must not appear in scans")
}

func TestKeysFiltersByPrefix(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Put(ctx, "REFRESH:a", "alice", time.Hour))
	require.NoError(t, s.Put(ctx, "REFRESH:b", "bob", time.Hour))
	require.NoError(t, s.Put(ctx, "SIGNUP:c", "payload", time.Hour))

	keys, err := s.Keys(ctx, "REFRESH:")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"REFRESH:a", "REFRESH:b"}, keys)
}

func TestGetDelSingleUse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Put(ctx, "RESET_TOKEN:t1", "alice@example.com", time.Hour))

	got, err := s.GetDel(ctx, "RESET_TOKEN:t1")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", got)

	_, err = s.GetDel(ctx, "RESET_TOKEN:t1")
	require.ErrorIs(t, err, tokenstore.ErrNotFound)
}

func TestGetDelConcurrentExactlyOneWins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Put(ctx, "SIGNUP:race", "the-payload", time.Hour))

	const redeemers = 32
	var wg sync.WaitGroup
	results := make(chan error, redeemers)

	for range redeemers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.GetDel(ctx, "SIGNUP:race")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, misses int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, tokenstore.ErrNotFound):
			misses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, wins, "exactly one redeemer must observe the payload")
	require.Equal(t, redeemers-1, misses)
}
