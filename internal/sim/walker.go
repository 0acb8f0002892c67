package sim

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mini-hcmc-metro/tracker/internal/models"
)

// ScheduleProvider is the read-only schedule feed the walker consumes. The
// provider is injected at construction; the walker never owns or mutates
// schedule state.
type ScheduleProvider interface {
	// ActiveTrips returns the trips that could plausibly be on the map at
	// the given instant, stops ordered by sequence.
	ActiveTrips(ctx context.Context, now time.Time) ([]models.Trip, error)
	// Stations returns the station registry keyed by station ID.
	Stations(ctx context.Context) (map[string]models.Station, error)
}

// Walker computes the fleet position snapshot for an instant by walking
// each active trip's legs.
type Walker struct {
	provider    ScheduleProvider
	chaos       *Chaos
	parallelism int
}

// NewWalker creates a walker. parallelism bounds the number of trains
// evaluated concurrently per tick; values below 1 fall back to
// sequential evaluation.
func NewWalker(provider ScheduleProvider, chaos *Chaos, parallelism int) *Walker {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Walker{provider: provider, chaos: chaos, parallelism: parallelism}
}

// Snapshot computes the position of every active train at the given
// instant. Individual trains fail soft: malformed trips are logged and
// skipped so one bad train never blanks the whole fleet. Only a failure to
// read the schedule feed itself is returned as an error.
func (w *Walker) Snapshot(ctx context.Context, now time.Time) ([]models.PositionSnapshot, error) {
	trips, err := w.provider.ActiveTrips(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to read active trips: %w", err)
	}
	stations, err := w.provider.Stations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read station registry: %w", err)
	}

	var (
		mu        sync.Mutex
		snapshots []models.PositionSnapshot
	)

	var g errgroup.Group
	g.SetLimit(w.parallelism)
	for _, trip := range trips {
		trip := trip
		g.Go(func() error {
			snap := w.walkTrip(trip, stations, now)
			if snap == nil {
				return nil
			}
			mu.Lock()
			snapshots = append(snapshots, *snap)
			mu.Unlock()
			return nil
		})
	}
	// Per-train errors are swallowed inside walkTrip, so Wait never fails.
	_ = g.Wait()

	return snapshots, nil
}

// walkTrip finds the train's currently active leg, if any, and returns its
// decorated position. Returns nil for trains that are off-map (trip not
// started or already completed) and for trains with unusable data.
func (w *Walker) walkTrip(trip models.Trip, stations map[string]models.Station, now time.Time) (snap *models.PositionSnapshot) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Sim: train %s: panic during position computation, skipping: %v", trip.TrainID, r)
			snap = nil
		}
	}()

	legs := trip.Legs()
	if len(legs) == 0 {
		log.Printf("Sim: train %s: trip has fewer than two stops, skipping", trip.TrainID)
		return nil
	}

	for _, leg := range legs {
		from, ok := stations[leg.FromStationID]
		if !ok {
			log.Printf("Sim: train %s: unknown station %s, skipping train", trip.TrainID, leg.FromStationID)
			return nil
		}
		to, ok := stations[leg.ToStationID]
		if !ok {
			log.Printf("Sim: train %s: unknown station %s, skipping train", trip.TrainID, leg.ToStationID)
			return nil
		}

		pos, err := PositionOnLeg(leg, from.Coordinate, to.Coordinate, now)
		if err != nil {
			log.Printf("Sim: train %s: %v, skipping train", trip.TrainID, err)
			return nil
		}
		if pos.State == models.LegInactive {
			continue
		}

		// First active leg wins; by the trip ordering invariant a train
		// occupies at most one leg at a time.
		return w.chaos.Decorate(snapshotFromLeg(trip, pos, now), now)
	}

	return nil
}

func snapshotFromLeg(trip models.Trip, pos models.LegPosition, now time.Time) *models.PositionSnapshot {
	snap := &models.PositionSnapshot{
		TrainID:    trip.TrainID,
		LineID:     trip.LineID,
		Coordinate: pos.Coordinate,
		ComputedAt: now,
	}
	switch pos.State {
	case models.LegAtStation:
		snap.Status = models.TrainStatusAtStation
		snap.StationID = pos.StationID
	case models.LegMoving:
		snap.Status = models.TrainStatusMoving
		snap.FromStationID = pos.FromStationID
		snap.ToStationID = pos.ToStationID
		snap.ProgressPercent = pos.ProgressPercent
		snap.Bearing = pos.Bearing
		snap.SpeedKmh = pos.SpeedKmh
	}
	return snap
}
