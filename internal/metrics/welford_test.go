package metrics

import (
	"math"
	"testing"
)

func TestWelfordEmpty(t *testing.T) {
	var w Welford
	if w.Mean() != 0 || w.StdDev() != 0 || w.Count() != 0 {
		t.Errorf("empty state: mean=%v stddev=%v count=%d", w.Mean(), w.StdDev(), w.Count())
	}
}

func TestWelfordSingleObservation(t *testing.T) {
	var w Welford
	w.Observe(12.5)

	if w.Mean() != 12.5 {
		t.Errorf("Mean = %v, want 12.5", w.Mean())
	}
	if w.StdDev() != 0 {
		t.Errorf("StdDev with one observation = %v, want 0", w.StdDev())
	}
}

func TestWelfordMatchesDirectComputation(t *testing.T) {
	values := []float64{4, 7, 13, 16, 8, 9, 11, 5}

	var w Welford
	var sum float64
	for _, v := range values {
		w.Observe(v)
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	stddev := math.Sqrt(sq / float64(len(values)))

	if math.Abs(w.Mean()-mean) > 1e-9 {
		t.Errorf("Mean = %v, want %v", w.Mean(), mean)
	}
	if math.Abs(w.StdDev()-stddev) > 1e-9 {
		t.Errorf("StdDev = %v, want %v", w.StdDev(), stddev)
	}
	if w.Count() != len(values) {
		t.Errorf("Count = %d, want %d", w.Count(), len(values))
	}
}
