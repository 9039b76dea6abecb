package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	startTime time.Time
}

// NewHealthHandlers constructs the default health handlers.
func NewHealthHandlers() *HealthHandlers {
	return &HealthHandlers{startTime: time.Now()}
}

// Healthz responds with a simple status payload for monitoring.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	payload := map[string]any{
		"status":    "ok",
		"uptime":    time.Since(h.startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Readyz reports readiness. The service holds its catalog in memory, so it is
// ready as soon as it is serving.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	h.Healthz(w, r)
}
