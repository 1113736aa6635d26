package auth

import (
	"context"
	"testing"

	"github.com/edustack/coursegate/internal/tokenstore"
	"github.com/edustack/coursegate/internal/tokenstore/drivers/memory"
	"github.com/edustack/coursegate/pkg/identity"
	"github.com/edustack/coursegate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTokenService(t *testing.T) (*TokenService, *memory.Store) {
	t.Helper()

	codec, err := jwtx.NewCodec([]byte("unit-test-secret-unit-test-secret"), "coursegate-test")
	require.NoError(t, err)

	store := memory.NewStore()
	svc := &TokenService{
		Codec:      codec,
		Store:      store,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
	return svc, store
}

func TestIssueAccessTokenCarriesSubjectAndRole(t *testing.T) {
	t.Parallel()
	svc, _ := newTokenService(t)

	token, err := svc.IssueAccessToken("alice@example.com", identity.RoleUser)
	require.NoError(t, err)

	claims, err := svc.Codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", claims.Subject)
	require.Equal(t, "USER", claims.Role)
}

func TestEstablishSessionRecordsRefresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTokenService(t)

	id, err := svc.EstablishSession(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// The store entry is the session.
	subject, err := store.Get(ctx, tokenstore.PrefixRefresh+id)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", subject)

	live, err := tokenstore.SubjectHasSession(ctx, store, "alice@example.com")
	require.NoError(t, err)
	require.True(t, live)
}

func TestConcurrentLoginsYieldIndependentSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTokenService(t)

	// Two logins for the same subject: both succeed, both valid
	// (multi-device sessions are intentional).
	a, err := svc.EstablishSession(ctx, "alice@example.com")
	require.NoError(t, err)
	b, err := svc.EstablishSession(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	keys, err := store.Keys(ctx, tokenstore.PrefixRefresh)
	require.NoError(t, err)
	require.Len(t, keys, 2)
}

func TestResolveRefresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTokenService(t)

	id, err := svc.EstablishSession(ctx, "bob@example.com")
	require.NoError(t, err)

	subject, err := svc.ResolveRefresh(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "bob@example.com", subject)

	// Unknown ids get the explicit failure, not a new token.
	_, err = svc.ResolveRefresh(ctx, "never-issued")
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestLogoutRevokesOnNextLivenessCheck(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newTokenService(t)

	_, err := svc.EstablishSession(ctx, "alice@example.com")
	require.NoError(t, err)

	// The access token stays cryptographically valid...
	access, err := svc.IssueAccessToken("alice@example.com", identity.RoleUser)
	require.NoError(t, err)

	dropped, err := svc.Logout(ctx, "alice@example.com")
	require.NoError(t, err)
	require.True(t, dropped)

	// ...but the liveness check now fails, so the gateway attaches no
	// principal for the orphaned token.
	live, err := tokenstore.SubjectHasSession(ctx, store, "alice@example.com")
	require.NoError(t, err)
	require.False(t, live)

	_, err = svc.Codec.Verify(access)
	require.NoError(t, err, "revocation does not invalidate the signature itself")

	// A second logout has nothing to drop.
	dropped, err = svc.Logout(ctx, "alice@example.com")
	require.NoError(t, err)
	require.False(t, dropped)
}
