// Package eta estimates arrival times from live fleet snapshots. It is an
// independent consumer of the snapshot feed: it deliberately re-derives leg
// timing from the static schedule rather than reaching into the walker.
package eta

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/mini-hcmc-metro/tracker/internal/models"
)

// Fallback bounds, in minutes, used when no train is currently active on
// the requested line. The fallback is a placeholder, never a precise ETA,
// and is always flagged as such.
const (
	fallbackMinMinutes = 3
	fallbackMaxMinutes = 12
)

// Estimate is the ETA result for one station on one line.
type Estimate struct {
	ETAMinutes         float64 `json:"etaMinutes"`
	IsEstimateFallback bool    `json:"isEstimateFallback"`
	TrainID            string  `json:"trainId,omitempty"`
}

// Projector computes ETAs by projecting each active train forward along
// its remaining scheduled legs.
type Projector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewProjector creates a projector; the seed only feeds the fallback
// estimate.
func NewProjector(seed int64) *Projector {
	return &Projector{rng: rand.New(rand.NewSource(seed))}
}

// Estimate returns the minutes until the next train on lineID reaches
// stationID, taking the minimum over all active trains that still have the
// target station ahead of them. trips is the static schedule lookup for
// the trains appearing in the fleet snapshot.
func (p *Projector) Estimate(stationID, lineID string, fleet []models.PositionSnapshot, trips []models.Trip, now time.Time) Estimate {
	tripsByTrain := make(map[string]models.Trip, len(trips))
	for _, t := range trips {
		tripsByTrain[t.TrainID] = t
	}

	best := math.Inf(1)
	bestTrain := ""
	for _, snap := range fleet {
		if snap.LineID != lineID {
			continue
		}
		trip, ok := tripsByTrain[snap.TrainID]
		if !ok {
			continue
		}
		minutes, ok := projectTrain(snap, trip, stationID, now)
		if ok && minutes < best {
			best = minutes
			bestTrain = snap.TrainID
		}
	}

	if math.IsInf(best, 1) {
		return Estimate{
			ETAMinutes:         p.fallbackMinutes(),
			IsEstimateFallback: true,
		}
	}
	return Estimate{
		ETAMinutes: math.Round(best*10) / 10,
		TrainID:    bestTrain,
	}
}

// projectTrain computes the travel time from a train's snapshot position to
// the target station: the remainder of its current leg plus the summed
// scheduled travel and dwell time of every subsequent leg up to the target.
// Reports false when the train no longer serves the target.
func projectTrain(snap models.PositionSnapshot, trip models.Trip, stationID string, now time.Time) (float64, bool) {
	legs := trip.Legs()
	idx := currentLegIndex(snap, legs)
	if idx < 0 {
		return 0, false
	}

	// A train waiting at the target station is already there.
	if snap.Status == models.TrainStatusAtStation && snap.StationID == stationID {
		return 0, true
	}

	var remaining time.Duration
	switch snap.Status {
	case models.TrainStatusMoving:
		// Remaining share of the current leg from reported progress.
		fraction := 1 - snap.ProgressPercent/100
		remaining = time.Duration(fraction * float64(legs[idx].Duration()))
	case models.TrainStatusAtStation:
		// Waiting at the origin: dwell until departure plus the full leg.
		remaining = legs[idx].EffectiveArrival().Sub(now)
		if remaining < 0 {
			remaining = 0
		}
	default:
		return 0, false
	}

	if legs[idx].ToStationID == stationID {
		return remaining.Minutes(), true
	}

	for i := idx + 1; i < len(legs); i++ {
		dwell := legs[i].EffectiveDeparture().Sub(legs[i-1].EffectiveArrival())
		if dwell > 0 {
			remaining += dwell
		}
		remaining += legs[i].Duration()
		if legs[i].ToStationID == stationID {
			return remaining.Minutes(), true
		}
	}

	// Target station is behind the train or not on this trip.
	return 0, false
}

// currentLegIndex locates the leg a snapshot was computed from.
func currentLegIndex(snap models.PositionSnapshot, legs []models.Leg) int {
	for i, leg := range legs {
		switch snap.Status {
		case models.TrainStatusMoving:
			if leg.FromStationID == snap.FromStationID && leg.ToStationID == snap.ToStationID {
				return i
			}
		case models.TrainStatusAtStation:
			if leg.FromStationID == snap.StationID {
				return i
			}
		}
	}
	return -1
}

func (p *Projector) fallbackMinutes() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return float64(fallbackMinMinutes + p.rng.Intn(fallbackMaxMinutes-fallbackMinMinutes+1))
}
