// Package metrics provides lightweight running statistics for the
// simulation loop.
package metrics

import "math"

// Welford holds running statistics using Welford's online algorithm, which
// computes mean and standard deviation incrementally in O(1) space without
// storing observations.
type Welford struct {
	count int
	mean  float64
	m2    float64
}

// Observe adds a new observation.
func (w *Welford) Observe(v float64) {
	w.count++
	delta := v - w.mean
	w.mean += delta / float64(w.count)
	w.m2 += delta * (v - w.mean)
}

// Mean returns the current running mean.
func (w *Welford) Mean() float64 { return w.mean }

// StdDev returns the population standard deviation, or 0 with fewer than
// two observations.
func (w *Welford) StdDev() float64 {
	if w.count < 2 {
		return 0
	}
	return math.Sqrt(w.m2 / float64(w.count))
}

// Count returns the number of observations.
func (w *Welford) Count() int { return w.count }
