// Package schedule provides read access to the persisted schedule feed and
// station registry. The simulation core only ever reads from here; schedule
// generation and delay management write through the Writer used by the
// seeding tool.
package schedule

import (
	"context"
	"time"

	"github.com/mini-hcmc-metro/tracker/internal/models"
)

// activeWindow is how far ahead of a trip's first departure it is already
// handed to the walker, so waiting trains inside the pre-departure window
// show up on the map.
const activeWindow = 5 * time.Minute

// Store is the read side of the schedule feed.
type Store interface {
	// ActiveTrips returns trips whose span covers now (first departure
	// minus the pre-departure window through last arrival), restricted to
	// scheduled and in-progress stops, ordered by stop sequence.
	ActiveTrips(ctx context.Context, now time.Time) ([]models.Trip, error)
	// TripsForLine returns all trips of a line for ETA projection.
	TripsForLine(ctx context.Context, lineID string) ([]models.Trip, error)
	// Stations returns the station registry keyed by station ID.
	Stations(ctx context.Context) (map[string]models.Station, error)
	// Ping probes store connectivity for health checks.
	Ping(ctx context.Context) error
	// Close releases the underlying connections.
	Close() error
}
