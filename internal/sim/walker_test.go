package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mini-hcmc-metro/tracker/internal/models"
)

// fakeProvider is an in-memory ScheduleProvider for walker tests.
type fakeProvider struct {
	trips    []models.Trip
	stations map[string]models.Station
	err      error
}

func (f *fakeProvider) ActiveTrips(ctx context.Context, now time.Time) ([]models.Trip, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.trips, nil
}

func (f *fakeProvider) Stations(ctx context.Context) (map[string]models.Station, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stations, nil
}

var testStations = map[string]models.Station{
	"BEN-THANH": {ID: "BEN-THANH", Coordinate: models.Coordinate{106.6983, 10.7697}},
	"BA-SON":    {ID: "BA-SON", Coordinate: models.Coordinate{106.7086, 10.7809}},
	"TAN-CANG":  {ID: "TAN-CANG", Coordinate: models.Coordinate{106.7225, 10.7986}},
}

// threeStopTrip departs BEN-THANH at base, reaches BA-SON at base+6m,
// departs again at base+7m and reaches TAN-CANG at base+13m.
func threeStopTrip(trainID string, base time.Time) models.Trip {
	return models.Trip{
		TrainID: trainID,
		LineID:  "L1",
		Stops: []models.Stop{
			{StationID: "BEN-THANH", Order: 0, ArrivalTime: base, DepartureTime: base},
			{StationID: "BA-SON", Order: 1, ArrivalTime: base.Add(6 * time.Minute), DepartureTime: base.Add(7 * time.Minute)},
			{StationID: "TAN-CANG", Order: 2, ArrivalTime: base.Add(13 * time.Minute), DepartureTime: base.Add(13 * time.Minute)},
		},
	}
}

func newTestWalker(p ScheduleProvider) *Walker {
	return NewWalker(p, NewChaos(7), 4)
}

func TestSnapshotMovingTrain(t *testing.T) {
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	provider := &fakeProvider{
		trips:    []models.Trip{threeStopTrip("L1-OUT-001", base)},
		stations: testStations,
	}

	snaps, err := newTestWalker(provider).Snapshot(context.Background(), base.Add(3*time.Minute))
	require.NoError(t, err)
	require.Len(t, snaps, 1)

	snap := snaps[0]
	assert.Equal(t, "L1-OUT-001", snap.TrainID)
	assert.Equal(t, models.TrainStatusMoving, snap.Status)
	assert.Equal(t, "BEN-THANH", snap.FromStationID)
	assert.Equal(t, "BA-SON", snap.ToStationID)
	assert.InDelta(t, 50.0, snap.ProgressPercent, 1e-6)
	assert.NotEmpty(t, snap.CrowdLevel)
}

// The first active leg wins: at base+6m30s the train is dwelling at BA-SON
// inside the second leg's pre-departure window, so it reports at_station
// there, not 100% through the first leg.
func TestSnapshotDwellingBetweenLegs(t *testing.T) {
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	provider := &fakeProvider{
		trips:    []models.Trip{threeStopTrip("L1-OUT-001", base)},
		stations: testStations,
	}

	snaps, err := newTestWalker(provider).Snapshot(context.Background(), base.Add(6*time.Minute+30*time.Second))
	require.NoError(t, err)
	require.Len(t, snaps, 1)

	assert.Equal(t, models.TrainStatusAtStation, snaps[0].Status)
	assert.Equal(t, "BA-SON", snaps[0].StationID)
}

func TestSnapshotCompletedTripEmitsNothing(t *testing.T) {
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	provider := &fakeProvider{
		trips:    []models.Trip{threeStopTrip("L1-OUT-001", base)},
		stations: testStations,
	}

	// 10 minutes after the final arrival: no stale position may be
	// emitted.
	snaps, err := newTestWalker(provider).Snapshot(context.Background(), base.Add(23*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestSnapshotNotYetStartedEmitsNothing(t *testing.T) {
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	provider := &fakeProvider{
		trips:    []models.Trip{threeStopTrip("L1-OUT-001", base)},
		stations: testStations,
	}

	snaps, err := newTestWalker(provider).Snapshot(context.Background(), base.Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

// One malformed train must not blank the fleet: the valid train's snapshot
// still comes back and no error is raised.
func TestSnapshotPartialFailureIsolation(t *testing.T) {
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

	badStation := threeStopTrip("L1-OUT-BAD", base)
	badStation.Stops[1].StationID = "NO-SUCH-STATION"

	zeroLegs := models.Trip{TrainID: "L1-OUT-EMPTY", LineID: "L1"}

	provider := &fakeProvider{
		trips:    []models.Trip{badStation, zeroLegs, threeStopTrip("L1-OUT-001", base)},
		stations: testStations,
	}

	snaps, err := newTestWalker(provider).Snapshot(context.Background(), base.Add(3*time.Minute))
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "L1-OUT-001", snaps[0].TrainID)
}

func TestSnapshotScheduleReadFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("database locked")}

	_, err := newTestWalker(provider).Snapshot(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestSnapshotManyTrainsInParallel(t *testing.T) {
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	provider := &fakeProvider{stations: testStations}
	for i := 0; i < 50; i++ {
		provider.trips = append(provider.trips, threeStopTrip(trainName(i), base))
	}

	snaps, err := newTestWalker(provider).Snapshot(context.Background(), base.Add(3*time.Minute))
	require.NoError(t, err)
	assert.Len(t, snaps, 50)

	seen := make(map[string]bool)
	for _, s := range snaps {
		assert.False(t, seen[s.TrainID], "duplicate snapshot for %s", s.TrainID)
		seen[s.TrainID] = true
	}
}

func trainName(i int) string {
	return "L1-OUT-" + string(rune('A'+i/26)) + string(rune('A'+i%26))
}
