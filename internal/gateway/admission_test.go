package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edustack/coursegate/internal/tokenstore"
	"github.com/edustack/coursegate/internal/tokenstore/drivers/memory"
	"github.com/edustack/coursegate/pkg/identity"
	"github.com/edustack/coursegate/pkg/jwtx"
)

func newCodec(t *testing.T) *jwtx.Codec {
	t.Helper()
	codec, err := jwtx.NewCodec([]byte("test-secret"), "coursegate-test")
	require.NoError(t, err)
	return codec
}

func signToken(t *testing.T, c *jwtx.Codec, subject, role string, ttl time.Duration) string {
	t.Helper()
	token, err := c.Sign(jwtx.NewAccessClaims(subject, role, "coursegate-test", ttl, time.Now()))
	require.NoError(t, err)
	return token
}

// probe records what the downstream handler observed.
type probe struct {
	called    bool
	principal identity.Principal
	hasP      bool
	subjectHd string
	roleHd    string
}

func (p *probe) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.called = true
		p.principal, p.hasP = identity.PrincipalFromContext(r.Context())
		p.subjectHd = r.Header.Get(HeaderAuthSubject)
		p.roleHd = r.Header.Get(HeaderAuthRole)
		w.WriteHeader(http.StatusOK)
	})
}

func establishSession(t *testing.T, store tokenstore.Store, subject string) {
	t.Helper()
	require.NoError(t, store.Put(context.Background(), tokenstore.PrefixRefresh+"session-"+subject, subject, time.Hour))
}

func TestFilterAttachesLivePrincipal(t *testing.T) {
	t.Parallel()

	codec := newCodec(t)
	store := memory.NewStore()
	establishSession(t, store, "alice")

	f := &Filter{Verifier: codec, Sessions: store}
	p := &probe{}

	req := httptest.NewRequest(http.MethodGet, "/courses", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, codec, "alice", "USER", time.Minute))
	rr := httptest.NewRecorder()
	f.Middleware()(p.handler()).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, p.called)
	require.True(t, p.hasP)
	require.Equal(t, "alice", p.principal.Subject)
	require.Equal(t, identity.RoleUser, p.principal.Role)
	require.Equal(t, "alice", p.subjectHd)
	require.Equal(t, "USER", p.roleHd)
}

func TestFilterFailOpen(t *testing.T) {
	t.Parallel()

	codec := newCodec(t)
	otherCodec, err := jwtx.NewCodec([]byte("other-secret"), "coursegate-test")
	require.NoError(t, err)

	store := memory.NewStore()
	establishSession(t, store, "alice")

	tests := []struct {
		name   string
		header string
	}{
		{name: "no header", header: ""},
		{name: "malformed token", header: "Bearer not-a-jwt"},
		{name: "wrong signature", header: "Bearer " + signToken(t, otherCodec, "alice", "USER", time.Minute)},
		{name: "expired token", header: "Bearer " + signToken(t, codec, "alice", "USER", -time.Minute)},
		{name: "unknown role", header: "Bearer " + signToken(t, codec, "alice", "SUPERUSER", time.Minute)},
		{name: "revoked subject", header: "Bearer " + signToken(t, codec, "mallory", "USER", time.Minute)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := &Filter{Verifier: codec, Sessions: store}
			p := &probe{}

			req := httptest.NewRequest(http.MethodGet, "/courses", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			f.Middleware()(p.handler()).ServeHTTP(rr, req)

			// Request continues without identity; no rejection here.
			require.Equal(t, http.StatusOK, rr.Code)
			require.True(t, p.called)
			require.False(t, p.hasP)
			require.Empty(t, p.subjectHd)
		})
	}
}

// brokenStore fails every operation, standing in for an unreachable Redis.
type brokenStore struct{}

var errStoreDown = errors.New("store down")

func (brokenStore) Put(context.Context, string, string, time.Duration) error { return errStoreDown }
func (brokenStore) Get(context.Context, string) (string, error) { return "", errStoreDown }
func (brokenStore) GetDel(context.Context, string) (string, error) { return "", errStoreDown }
func (brokenStore) Delete(context.Context, string) error { return errStoreDown }
func (brokenStore) Keys(context.Context, string) ([]string, error) { return nil, errStoreDown }

func TestFilterStoreFaultIsRetryableNotAnonymous(t *testing.T) {
	t.Parallel()

	codec := newCodec(t)
	f := &Filter{Verifier: codec, Sessions: brokenStore{}}
	p := &probe{}

	req := httptest.NewRequest(http.MethodGet, "/courses", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, codec, "alice", "USER", time.Minute))
	rr := httptest.NewRecorder()
	f.Middleware()(p.handler()).ServeHTTP(rr, req)

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.False(t, p.called)
}

func TestFilterStripsSpoofedIdentityHeaders(t *testing.T) {
	t.Parallel()

	codec := newCodec(t)
	f := &Filter{Verifier: codec, Sessions: memory.NewStore()}
	p := &probe{}

	// Anonymous request trying to smuggle identity headers past the edge.
	req := httptest.NewRequest(http.MethodGet, "/courses", nil)
	req.Header.Set(HeaderAuthSubject, "root@example.com")
	req.Header.Set(HeaderAuthRole, "ADMIN")
	rr := httptest.NewRecorder()
	f.Middleware()(p.handler()).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, p.subjectHd)
	require.Empty(t, p.roleHd)
}

func TestRevocationVisibleOnNextCheck(t *testing.T) {
	t.Parallel()

	codec := newCodec(t)
	store := memory.NewStore()
	key := tokenstore.PrefixRefresh + "session-alice"
	require.NoError(t, store.Put(context.Background(), key, "alice", time.Hour))

	f := &Filter{Verifier: codec, Sessions: store}
	token := signToken(t, codec, "alice", "USER", time.Minute)

	send := func() *probe {
		p := &probe{}
		req := httptest.NewRequest(http.MethodGet, "/courses", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		f.Middleware()(p.handler()).ServeHTTP(httptest.NewRecorder(), req)
		return p
	}

	require.True(t, send().hasP)

	// Logout elsewhere: the still-valid JWT no longer admits the subject.
	require.NoError(t, store.Delete(context.Background(), key))
	require.False(t, send().hasP)
}
