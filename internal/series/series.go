// Package series provides pure transformations over retrieved metric series.
// It has no storage dependency: callers retrieve a Series from the store and
// pass it through before display or export.
package series

import "gonum.org/v1/gonum/stat"

// Point is a single (step, value) observation of a metric.
type Point struct {
	Step  int64   `json:"step"`
	Value float64 `json:"value"`
}

// Series is an ordered sequence of points for one (run, metric name) pair.
// Store queries return it sorted ascending by step.
type Series []Point

// SmoothMovingAverage smooths a series with a trailing moving average.
//
// For each index i it averages values[max(0, i-window+1) .. i], so the window
// shrinks near the start of the series instead of padding or dropping early
// points. The output pairs each original step with its smoothed value and has
// exactly one entry per input entry. A window of 1 or less (including
// negative windows) returns an unmodified copy.
func SmoothMovingAverage(s Series, window int) Series {
	out := make(Series, len(s))
	if window <= 1 {
		copy(out, s)
		return out
	}

	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.Value
	}

	for i := range s {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		out[i] = Point{
			Step:  s[i].Step,
			Value: stat.Mean(values[lo:i+1], nil),
		}
	}
	return out
}
