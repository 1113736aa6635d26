package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/edustack/coursegate/pkg/httpx"
	"github.com/edustack/coursegate/pkg/identity"
	"github.com/edustack/coursegate/pkg/slogx"
)

// Route maps a path prefix to an upstream, optionally guarded at the edge.
// An empty Roles slice with Authenticated=false is a public pass-through;
// the services still run their own filters behind us.
type Route struct {
	Prefix        string
	Upstream      string          // upstream name, resolved via the Proxy's upstream map
	Authenticated bool            // require any verified principal
	Roles         []identity.Role // additionally require one of these roles
}

// Proxy owns one reverse proxy per upstream and the route table binding
// prefixes to them.
type Proxy struct {
	upstreams map[string]*httputil.ReverseProxy
	routes    []Route
}

// NewProxy builds reverse proxies for the named upstream base URLs.
func NewProxy(upstreams map[string]string, routes []Route) (*Proxy, error) {
	p := &Proxy{
		upstreams: make(map[string]*httputil.ReverseProxy, len(upstreams)),
		routes:    routes,
	}

	for name, raw := range upstreams {
		target, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse upstream %s url: %w", name, err)
		}
		p.upstreams[name] = newReverseProxy(target)
	}

	for _, route := range routes {
		if _, ok := p.upstreams[route.Upstream]; !ok {
			return nil, fmt.Errorf("route %s references unknown upstream %s", route.Prefix, route.Upstream)
		}
	}

	return p, nil
}

func newReverseProxy(target *url.URL) *httputil.ReverseProxy {
	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			// Keep the identity headers the admission filter injected.
			pr.Out.Header.Set(HeaderAuthSubject, pr.In.Header.Get(HeaderAuthSubject))
			pr.Out.Header.Set(HeaderAuthRole, pr.In.Header.Get(HeaderAuthRole))
		},
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		slogx.FromContext(r.Context()).Error("upstream unreachable", "upstream", target.Host, "err", err)
		httpx.WriteError(w, http.StatusBadGateway, "upstream unavailable")
	}
	return proxy
}

// Register mounts every route on the mux, wrapping guarded routes with the
// role check and all routes with the latency instrumentation.
func (p *Proxy) Register(mux *http.ServeMux) {
	for _, route := range p.routes {
		proxy := p.upstreams[route.Upstream]

		var h http.Handler = proxy
		if route.Authenticated || len(route.Roles) > 0 {
			h = httpx.RequireRoles(route.Roles...)(h)
		}
		h = Instrument(route.Upstream, h)

		mux.Handle(route.Prefix, h)
	}
}
