package preprocess

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"tsanalyzer/internal/dataset"
)

// present extracts the numeric cells of a column, dropping missing entries.
func present(cells []dataset.Value) []float64 {
	out := make([]float64, 0, len(cells))
	for _, c := range cells {
		if f, ok := c.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// stddev is the sample standard deviation (n-1 divisor).
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

func minMax(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	return floats.Min(xs), floats.Max(xs)
}

// quantile computes the p-quantile with linear interpolation between order
// statistics, matching the behavior the rest of the numeric stack assumes
// for quartile bounds.
func quantile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(pos)
	frac := pos - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func median(xs []float64) float64 {
	return quantile(xs, 0.5)
}
