package summary

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// HistogramBucket is one equal-width bin of a series distribution strip.
type HistogramBucket struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Histogram bins values into equal-width buckets across [min, max]. A
// constant series collapses into a single bucket.
func Histogram(values []float64, buckets int) []HistogramBucket {
	if len(values) == 0 || buckets <= 0 {
		return nil
	}

	min := floats.Min(values)
	max := floats.Max(values)
	if min == max {
		return []HistogramBucket{{Low: min, High: max, Count: len(values)}}
	}

	dividers := make([]float64, buckets+1)
	floats.Span(dividers, min, max)
	// Nudge the top divider so the maximum lands in the last bucket.
	dividers[buckets] = math.Nextafter(max, math.Inf(1))

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	counts := stat.Histogram(nil, dividers, sorted, nil)

	out := make([]HistogramBucket, buckets)
	for i := range out {
		high := dividers[i+1]
		if i == buckets-1 {
			high = max
		}
		out[i] = HistogramBucket{Low: dividers[i], High: high, Count: int(counts[i])}
	}
	return out
}
