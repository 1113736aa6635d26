package gateway

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Admission outcomes recorded per request at the edge.
const (
	OutcomeAnonymous     = "anonymous"
	OutcomeInvalidToken  = "invalid_token"
	OutcomeRevoked       = "revoked"
	OutcomeAuthenticated = "authenticated"
	OutcomeStoreError    = "store_error"
)

var (
	admissionOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_admission_outcomes_total",
			Help: "Admission filter verdicts at the edge.",
		},
		[]string{"outcome"},
	)

	proxyRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_proxy_request_duration_seconds",
			Help:    "Proxied request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream", "method", "status"},
	)
)

// RegisterMetrics registers the gateway collectors with the default registry.
// Call once at startup.
func RegisterMetrics() {
	prometheus.MustRegister(admissionOutcomes, proxyRequestDuration)
}

// MetricsHandler serves the prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// Instrument measures latency per upstream.
func Instrument(upstream string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		proxyRequestDuration.
			WithLabelValues(upstream, r.Method, strconv.Itoa(sw.code)).
			Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
