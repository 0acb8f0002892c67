package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mini-hcmc-metro/tracker/internal/models"
	"github.com/mini-hcmc-metro/tracker/internal/snapshot"
)

// FleetHandler serves the live fleet position snapshot.
type FleetHandler struct {
	snapshots *snapshot.Store
}

// NewFleetHandler creates a handler reading from the given snapshot store.
func NewFleetHandler(snapshots *snapshot.Store) *FleetHandler {
	return &FleetHandler{snapshots: snapshots}
}

// PositionsResponse is the JSON envelope for GET /api/fleet/positions.
type PositionsResponse struct {
	Positions  []models.PositionSnapshot `json:"positions"`
	Count      int                       `json:"count"`
	TickID     string                    `json:"tickId,omitempty"`
	ComputedAt time.Time                 `json:"computedAt"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// GetPositions handles GET /api/fleet/positions with an optional line_id
// filter. An empty fleet is a normal response, not an error; consumers
// render "no active trains".
func (h *FleetHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	lineID := r.URL.Query().Get("line_id")

	snap, ok := h.snapshots.Latest()
	positions := h.snapshots.Positions(lineID)
	if positions == nil {
		positions = []models.PositionSnapshot{}
	}

	resp := PositionsResponse{
		Positions: positions,
		Count:     len(positions),
	}
	if ok {
		resp.TickID = snap.TickID
		resp.ComputedAt = snap.ComputedAt
	}

	w.Header().Set("Content-Type", "application/json")
	// Cache for one second: positions are recomputed every few seconds and
	// the map layer polls faster than that.
	w.Header().Set("Cache-Control", "public, max-age=1")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// GetTrainPosition handles GET /api/fleet/positions/{trainId}.
func (h *FleetHandler) GetTrainPosition(w http.ResponseWriter, r *http.Request) {
	trainID := chi.URLParam(r, "trainId")
	if trainID == "" {
		writeError(w, http.StatusBadRequest, "trainId parameter is required", nil)
		return
	}

	pos, ok := h.snapshots.Position(trainID)
	if !ok {
		writeError(w, http.StatusNotFound, "Train is not currently active", map[string]interface{}{
			"trainId": trainID,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(pos)
}

func writeError(w http.ResponseWriter, status int, msg string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg, Details: details})
}
