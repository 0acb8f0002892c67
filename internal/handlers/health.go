package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mini-hcmc-metro/tracker/internal/schedule"
)

// HealthHandler reports service and schedule-store health.
type HealthHandler struct {
	store schedule.Store
}

// NewHealthHandler creates a health handler probing the given store.
func NewHealthHandler(store schedule.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// GetHealth handles GET /health with a store connectivity probe.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := h.store.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "error",
			"database":  "disconnected",
			"timestamp": time.Now().UTC(),
			"error":     err.Error(),
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"database":  "connected",
		"timestamp": time.Now().UTC(),
	})
}

// GetHealthz handles GET /healthz as a plain liveness probe.
func (h *HealthHandler) GetHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
