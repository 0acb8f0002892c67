package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/mini-hcmc-metro/tracker/internal/geo"
	"github.com/mini-hcmc-metro/tracker/internal/models"
)

// PreDepartureWindow is how long before its effective departure a train is
// reported as waiting at the origin station of a leg.
const PreDepartureWindow = 5 * time.Minute

// PositionOnLeg evaluates one leg at the given instant and returns a tagged
// LegPosition.
//
// The boundary rule is inclusive on both ends of the moving window: a train
// is Moving for departure <= now <= arrival, reporting 100% progress at the
// exact arrival instant, and Inactive strictly after it. The waiting window
// is [departure-PreDepartureWindow, departure).
//
// A leg with a non-positive effective duration or an unresolvable/invalid
// coordinate is malformed schedule data and returns an error; it is never
// evaluated as a division by zero.
func PositionOnLeg(leg models.Leg, from, to models.Coordinate, now time.Time) (models.LegPosition, error) {
	if !geo.IsValidCoordinate(from.Lat(), from.Lng()) {
		return models.LegPosition{}, fmt.Errorf("leg %s->%s: invalid origin coordinate %v", leg.FromStationID, leg.ToStationID, from)
	}
	if !geo.IsValidCoordinate(to.Lat(), to.Lng()) {
		return models.LegPosition{}, fmt.Errorf("leg %s->%s: invalid destination coordinate %v", leg.FromStationID, leg.ToStationID, to)
	}

	departure := leg.EffectiveDeparture()
	arrival := leg.EffectiveArrival()
	duration := arrival.Sub(departure)
	if duration <= 0 {
		return models.LegPosition{}, fmt.Errorf("leg %s->%s: non-positive duration %v", leg.FromStationID, leg.ToStationID, duration)
	}

	if now.After(arrival) {
		return models.LegPosition{State: models.LegInactive}, nil
	}

	if now.Before(departure) {
		if departure.Sub(now) <= PreDepartureWindow {
			return models.LegPosition{
				State:      models.LegAtStation,
				StationID:  leg.FromStationID,
				Coordinate: from,
			}, nil
		}
		return models.LegPosition{State: models.LegInactive}, nil
	}

	elapsed := now.Sub(departure)
	progress := geo.Clamp(elapsed.Seconds()/duration.Seconds(), 0, 1)

	pos := geo.Interpolate([2]float64(from), [2]float64(to), progress)
	distKm := geo.DistanceMeters(from.Lat(), from.Lng(), to.Lat(), to.Lng()) / 1000
	speed := math.Round(distKm/duration.Hours()*10) / 10

	return models.LegPosition{
		State:           models.LegMoving,
		FromStationID:   leg.FromStationID,
		ToStationID:     leg.ToStationID,
		Coordinate:      models.Coordinate(pos),
		ProgressPercent: progress * 100,
		Bearing:         geo.Bearing(from.Lat(), from.Lng(), to.Lat(), to.Lng()),
		SpeedKmh:        speed,
	}, nil
}
