package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// NewHealthMux serves /healthz and /readyz. Liveness always answers 200
// with the optional stats; readiness runs the registry and answers 503
// when it is unhealthy.
func NewHealthMux(registry *HealthRegistry, stats func() any, timeout time.Duration) *http.ServeMux {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		response := map[string]any{"status": "ok"}
		if stats != nil {
			response["stats"] = stats()
		}
		writeJSON(w, http.StatusOK, response)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		report := registry.Check(ctx)
		status := http.StatusOK
		if report.Status == HealthStatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, report)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
