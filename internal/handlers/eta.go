package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mini-hcmc-metro/tracker/internal/eta"
	"github.com/mini-hcmc-metro/tracker/internal/schedule"
	"github.com/mini-hcmc-metro/tracker/internal/snapshot"
)

// ETAHandler serves next-arrival estimates for the route planner.
type ETAHandler struct {
	snapshots *snapshot.Store
	store     schedule.Store
	projector *eta.Projector
}

// NewETAHandler creates an ETA handler.
func NewETAHandler(snapshots *snapshot.Store, store schedule.Store, projector *eta.Projector) *ETAHandler {
	return &ETAHandler{snapshots: snapshots, store: store, projector: projector}
}

// GetETA handles GET /api/eta?station_id=&line_id=.
func (h *ETAHandler) GetETA(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station_id")
	lineID := r.URL.Query().Get("line_id")
	if stationID == "" || lineID == "" {
		writeError(w, http.StatusBadRequest, "station_id and line_id parameters are required", nil)
		return
	}

	trips, err := h.store.TripsForLine(r.Context(), lineID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read schedule", map[string]interface{}{
			"internal": err.Error(),
		})
		return
	}

	fleet := h.snapshots.Positions(lineID)
	estimate := h.projector.Estimate(stationID, lineID, fleet, trips, time.Now().UTC())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(estimate)
}
