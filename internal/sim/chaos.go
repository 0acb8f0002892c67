package sim

import (
	"math/rand"
	"sync"
	"time"

	"github.com/mini-hcmc-metro/tracker/internal/models"
)

// jitterRange is the maximum perturbation added to each coordinate
// component, in degrees. Roughly five meters of simulated GPS noise; purely
// cosmetic so the rendered trains do not sit perfectly still on the line.
const jitterRange = 0.00005

// Chaos layers simulated measurement noise and derived operational metrics
// on top of raw computed positions.
type Chaos struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewChaos creates a decorator seeded for reproducible jitter in tests.
func NewChaos(seed int64) *Chaos {
	return &Chaos{rng: rand.New(rand.NewSource(seed))}
}

// Decorate enriches a snapshot in place with positional jitter, a
// time-of-day crowd level and the decoration timestamp. A nil snapshot
// passes through untouched.
func (c *Chaos) Decorate(snap *models.PositionSnapshot, now time.Time) *models.PositionSnapshot {
	if snap == nil {
		return nil
	}

	c.mu.Lock()
	jLng := (c.rng.Float64()*2 - 1) * jitterRange
	jLat := (c.rng.Float64()*2 - 1) * jitterRange
	c.mu.Unlock()

	snap.Coordinate[0] += jLng
	snap.Coordinate[1] += jLat
	snap.CrowdLevel = CrowdLevelForHour(now.Hour())
	snap.UpdatedAt = now
	return snap
}

// CrowdLevelForHour classifies passenger density from the wall-clock hour.
// Peak commute hours are high, midday is medium, everything else (nights,
// early mornings) is low. Deterministic; not backed by real sensors.
func CrowdLevelForHour(hour int) models.CrowdLevel {
	switch {
	case hour >= 7 && hour <= 9:
		return models.CrowdHigh
	case hour >= 17 && hour <= 19:
		return models.CrowdHigh
	case hour >= 10 && hour <= 16:
		return models.CrowdMedium
	default:
		return models.CrowdLow
	}
}
