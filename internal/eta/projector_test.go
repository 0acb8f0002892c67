package eta

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mini-hcmc-metro/tracker/internal/models"
)

// testTrip runs BEN-THANH -> BA-SON -> TAN-CANG with 6-minute legs and a
// 1-minute dwell at BA-SON.
func testTrip(trainID string, base time.Time) models.Trip {
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

func movingSnapshot(trainID string, progress float64) models.PositionSnapshot {
	return models.PositionSnapshot{
		TrainID:         trainID,
		LineID:          "L1",
		Status:          models.TrainStatusMoving,
		FromStationID:   "BEN-THANH",
		ToStationID:     "BA-SON",
		ProgressPercent: progress,
	}
}

func TestEstimateMovingTrainToNextStation(t *testing.T) {
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	p := NewProjector(1)

	got := p.Estimate("BA-SON", "L1",
		[]models.PositionSnapshot{movingSnapshot("L1-OUT-001", 50)},
		[]models.Trip{testTrip("L1-OUT-001", base)},
		base.Add(3*time.Minute))

	require.False(t, got.IsEstimateFallback)
	// Half of a 6-minute leg remains.
	assert.InDelta(t, 3.0, got.ETAMinutes, 0.01)
	assert.Equal(t, "L1-OUT-001", got.TrainID)
}

func TestEstimateAcrossDownstreamLegs(t *testing.T) {
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	p := NewProjector(1)

	got := p.Estimate("TAN-CANG", "L1",
		[]models.PositionSnapshot{movingSnapshot("L1-OUT-001", 50)},
		[]models.Trip{testTrip("L1-OUT-001", base)},
		base.Add(3*time.Minute))

	require.False(t, got.IsEstimateFallback)
	// 3 min to BA-SON + 1 min dwell + 6 min travel.
	assert.InDelta(t, 10.0, got.ETAMinutes, 0.01)
}

func TestEstimatePicksNearestTrain(t *testing.T) {
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	p := NewProjector(1)

	got := p.Estimate("BA-SON", "L1",
		[]models.PositionSnapshot{
			movingSnapshot("L1-OUT-001", 10),
			movingSnapshot("L1-OUT-002", 80),
		},
		[]models.Trip{
			testTrip("L1-OUT-001", base),
			testTrip("L1-OUT-002", base),
		},
		base.Add(3*time.Minute))

	require.False(t, got.IsEstimateFallback)
	assert.Equal(t, "L1-OUT-002", got.TrainID)
	// 20% of 6 minutes.
	assert.InDelta(t, 1.2, got.ETAMinutes, 0.01)
}

// A train that has already passed the target must not contribute an ETA.
func TestEstimateIgnoresTrainPastTarget(t *testing.T) {
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	p := NewProjector(1)

	past := models.PositionSnapshot{
		TrainID:       "L1-OUT-001",
		LineID:        "L1",
		Status:        models.TrainStatusMoving,
		FromStationID: "BA-SON",
		ToStationID:   "TAN-CANG",
	}

	got := p.Estimate("BEN-THANH", "L1",
		[]models.PositionSnapshot{past},
		[]models.Trip{testTrip("L1-OUT-001", base)},
		base.Add(9*time.Minute))

	assert.True(t, got.IsEstimateFallback)
}

func TestEstimateWaitingTrainIncludesDwell(t *testing.T) {
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	p := NewProjector(1)

	waiting := models.PositionSnapshot{
		TrainID:   "L1-OUT-001",
		LineID:    "L1",
		Status:    models.TrainStatusAtStation,
		StationID: "BA-SON",
	}

	// 30 seconds before departure from BA-SON; arrival at TAN-CANG is 6.5
	// minutes out.
	got := p.Estimate("TAN-CANG", "L1",
		[]models.PositionSnapshot{waiting},
		[]models.Trip{testTrip("L1-OUT-001", base)},
		base.Add(6*time.Minute+30*time.Second))

	require.False(t, got.IsEstimateFallback)
	assert.InDelta(t, 6.5, got.ETAMinutes, 0.01)
}

func TestEstimateAtTargetStation(t *testing.T) {
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	p := NewProjector(1)

	waiting := models.PositionSnapshot{
		TrainID:   "L1-OUT-001",
		LineID:    "L1",
		Status:    models.TrainStatusAtStation,
		StationID: "BA-SON",
	}

	got := p.Estimate("BA-SON", "L1",
		[]models.PositionSnapshot{waiting},
		[]models.Trip{testTrip("L1-OUT-001", base)},
		base.Add(6*time.Minute+30*time.Second))

	require.False(t, got.IsEstimateFallback)
	assert.Zero(t, got.ETAMinutes)
}

// With no train active on the line the projector falls back to a bounded
// placeholder and flags it so consumers cannot mistake it for a computed
// ETA.
func TestEstimateFallback(t *testing.T) {
	p := NewProjector(1)

	got := p.Estimate("BA-SON", "L1", nil, nil, time.Now())
	assert.True(t, got.IsEstimateFallback)
	assert.GreaterOrEqual(t, got.ETAMinutes, float64(fallbackMinMinutes))
	assert.LessOrEqual(t, got.ETAMinutes, float64(fallbackMaxMinutes))
	assert.Empty(t, got.TrainID)

	// Trains on other lines do not count.
	other := p.Estimate("BA-SON", "L1",
		[]models.PositionSnapshot{{TrainID: "X", LineID: "L2", Status: models.TrainStatusMoving}},
		nil, time.Now())
	assert.True(t, other.IsEstimateFallback)
}
