package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/edustack/coursegate/pkg/httpx"
)

// HealthResponse reports liveness/readiness state for probes.
type HealthResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime,omitempty"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Pinger is what readiness needs from the token store client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LivezHandler always answers ok while the process is serving.
func LivezHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}

// ReadyzHandler checks the token store before reporting ready: a gateway
// that cannot run its liveness gate should not take traffic.
func ReadyzHandler(store Pinger, startTime time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{"token_store": "ok"}
		status := "ok"
		code := http.StatusOK

		if err := store.Ping(r.Context()); err != nil {
			checks["token_store"] = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, HealthResponse{
			Status: status,
			Uptime: time.Since(startTime).String(),
			Checks: checks,
		})
	}
}
