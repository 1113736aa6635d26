package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edustack/coursegate/internal/tokenstore"
	"github.com/edustack/coursegate/internal/tokenstore/drivers/memory"
	"github.com/edustack/coursegate/pkg/httpx"
)

// upstreamProbe is a fake backend recording what arrived.
type upstreamProbe struct {
	name     string
	lastPath string
	lastSubj string
	hits     int
}

func (u *upstreamProbe) server() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits++
		u.lastPath = r.URL.Path
		u.lastSubj = r.Header.Get(HeaderAuthSubject)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(u.name))
	}))
}

func newEdge(t *testing.T, userURL, courseURL string, sessions tokenstore.Store) http.Handler {
	t.Helper()

	proxy, err := NewProxy(
		map[string]string{"user": userURL, "course": courseURL},
		DefaultRoutes(),
	)
	require.NoError(t, err)

	mux := http.NewServeMux()
	proxy.Register(mux)

	codec := newCodec(t)
	filter := &Filter{Verifier: codec, Sessions: sessions}
	return httpx.Chain(mux, filter.Middleware())
}

func TestProxyRoutesByPrefix(t *testing.T) {
	t.Parallel()

	user := &upstreamProbe{name: "user"}
	course := &upstreamProbe{name: "course"}
	userSrv := user.server()
	defer userSrv.Close()
	courseSrv := course.server()
	defer courseSrv.Close()

	store := memory.NewStore()
	establishSession(t, store, "alice")
	edge := newEdge(t, userSrv.URL, courseSrv.URL, store)

	codec := newCodec(t)
	token := signToken(t, codec, "alice", "USER", time.Minute)

	// Public auth route reaches the user service without a token.
	rr := httptest.NewRecorder()
	edge.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "/auth/login", user.lastPath)

	// Authenticated course route with a live session.
	req := httptest.NewRequest(http.MethodGet, "/courses", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	edge.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 1, course.hits)
	require.Equal(t, "alice", course.lastSubj)
}

func TestProxyGuardsAuthenticatedRoutes(t *testing.T) {
	t.Parallel()

	user := &upstreamProbe{name: "user"}
	course := &upstreamProbe{name: "course"}
	userSrv := user.server()
	defer userSrv.Close()
	courseSrv := course.server()
	defer courseSrv.Close()

	edge := newEdge(t, userSrv.URL, courseSrv.URL, memory.NewStore())

	// No identity: the edge guard answers before any upstream is touched.
	rr := httptest.NewRecorder()
	edge.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/courses", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Zero(t, course.hits)

	// A cryptographically valid token with no live session is anonymous.
	codec := newCodec(t)
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, codec, "alice", "USER", time.Minute))
	rr = httptest.NewRecorder()
	edge.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Zero(t, user.hits)
}

func TestProxyUpstreamDown(t *testing.T) {
	t.Parallel()

	user := &upstreamProbe{name: "user"}
	userSrv := user.server()
	defer userSrv.Close()

	// Course upstream points nowhere.
	store := memory.NewStore()
	establishSession(t, store, "alice")
	edge := newEdge(t, userSrv.URL, "http://127.0.0.1:1", store)

	codec := newCodec(t)
	req := httptest.NewRequest(http.MethodGet, "/courses", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, codec, "alice", "USER", time.Minute))
	rr := httptest.NewRecorder()
	edge.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestProxyRejectsUnknownUpstream(t *testing.T) {
	t.Parallel()

	_, err := NewProxy(
		map[string]string{"user": "http://localhost:8081"},
		[]Route{{Prefix: "/courses", Upstream: "course"}},
	)
	require.Error(t, err)
}

func TestHealthHandlers(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	LivezHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/livez", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	ReadyzHandler(pingOK{}, time.Now()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	ReadyzHandler(pingFail{}, time.Now()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

type pingOK struct{}

func (pingOK) Ping(context.Context) error { return nil }

type pingFail struct{}

func (pingFail) Ping(context.Context) error { return errStoreDown }
