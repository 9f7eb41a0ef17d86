package preprocess

import (
	"math"

	"tsanalyzer/internal/dataset"
)

// NormalizeMethod selects the scaling policy.
type NormalizeMethod string

const (
	NormMinMax NormalizeMethod = "minmax"
	NormZScore NormalizeMethod = "zscore"
	NormRobust NormalizeMethod = "robust"
	NormLog    NormalizeMethod = "log"
)

// NormalizeOptions configures Normalize. A nil Columns list targets every
// numeric column; an explicit list is filtered to numeric columns.
type NormalizeOptions struct {
	Columns []string
	Method  NormalizeMethod
}

// Normalize rescales numeric columns in place and replaces the held dataset
// with the result. Columns whose scale parameter degenerates (zero standard
// deviation for zscore, zero IQR for robust) are left unchanged.
func (p *Preprocessor) Normalize(opts NormalizeOptions) (*dataset.Dataset, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	result := p.data.Clone()

	for _, name := range p.targetColumns(opts.Columns, true) {
		cells := result.Column(name)
		vals := present(cells)
		if len(vals) == 0 {
			continue
		}

		switch opts.Method {
		case NormZScore:
			m := mean(vals)
			sd := stddev(vals)
			if sd > 0 {
				mapNumeric(cells, func(f float64) float64 { return (f - m) / sd })
			}
		case NormRobust:
			med := median(vals)
			iqr := quantile(vals, 0.75) - quantile(vals, 0.25)
			if iqr > 0 {
				mapNumeric(cells, func(f float64) float64 { return (f - med) / iqr })
			}
		case NormLog:
			lo, _ := minMax(vals)
			offset := 0.0
			if lo <= 0 {
				offset = math.Abs(lo) + 1
			}
			mapNumeric(cells, func(f float64) float64 { return math.Log(f + offset) })
		default: // NormMinMax
			lo, hi := minMax(vals)
			if hi > lo {
				mapNumeric(cells, func(f float64) float64 { return (f - lo) / (hi - lo) })
			} else {
				// Constant column: collapse to 0 when the constant is 0,
				// otherwise to the midpoint of the target range.
				fill := 0.5
				if lo == 0 {
					fill = 0
				}
				mapNumeric(cells, func(float64) float64 { return fill })
			}
		}
	}

	p.data = result
	return result, nil
}

// mapNumeric applies fn to every numeric cell, leaving missing cells alone.
func mapNumeric(cells []dataset.Value, fn func(float64) float64) {
	for i, c := range cells {
		if f, ok := c.Float(); ok {
			cells[i] = dataset.Number(fn(f))
		}
	}
}
