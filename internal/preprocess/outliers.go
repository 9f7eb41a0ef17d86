package preprocess

import (
	"math"

	"tsanalyzer/internal/dataset"
)

// OutlierMethod selects the outlier detection policy.
type OutlierMethod string

const (
	OutlierIQR        OutlierMethod = "iqr"
	OutlierZScore     OutlierMethod = "zscore"
	OutlierPercentile OutlierMethod = "percentile"
)

// DefaultIQRThreshold is the conventional 1.5*IQR fence multiplier.
const DefaultIQRThreshold = 1.5

// OutlierOptions configures RemoveOutliers. A nil Columns list targets every
// numeric column; an explicit list is filtered to numeric columns. The
// threshold meaning depends on the method: IQR fence multiplier, z-score
// cutoff, or the central fraction of mass to keep for percentile filtering.
type OutlierOptions struct {
	Columns   []string
	Method    OutlierMethod
	Threshold float64
}

// RemoveOutliers drops rows whose value in a processed column falls outside
// that column's bounds, then replaces the held dataset with the result.
// Filtering is cumulative across columns: bounds for each column are
// computed on the rows that survived the previous columns. Rows that are
// missing in a column are never dropped for that column.
func (p *Preprocessor) RemoveOutliers(opts OutlierOptions) (*dataset.Dataset, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	if opts.Threshold == 0 {
		opts.Threshold = DefaultIQRThreshold
	}
	result := p.data.Clone()

	for _, name := range p.targetColumns(opts.Columns, true) {
		keep := keepRows(result.Column(name), opts.Method, opts.Threshold)
		if keep != nil {
			result = result.SelectRows(keep)
		}
	}

	p.data = result
	return result, nil
}

// keepRows returns the indices of rows to retain for one column, or nil to
// leave the dataset untouched.
func keepRows(cells []dataset.Value, method OutlierMethod, threshold float64) []int {
	vals := present(cells)
	if len(vals) == 0 {
		return nil
	}

	var lower, upper float64
	switch method {
	case OutlierZScore:
		m := mean(vals)
		sd := stddev(vals)
		if sd == 0 {
			return nil
		}
		lower, upper = m-threshold*sd, m+threshold*sd
	case OutlierPercentile:
		lowerP := (1 - threshold) / 2
		lower = quantile(vals, lowerP)
		upper = quantile(vals, 1-lowerP)
	default: // OutlierIQR
		q1 := quantile(vals, 0.25)
		q3 := quantile(vals, 0.75)
		iqr := q3 - q1
		lower, upper = q1-threshold*iqr, q3+threshold*iqr
	}

	keep := make([]int, 0, len(cells))
	for i, c := range cells {
		f, ok := c.Float()
		if !ok || math.IsNaN(f) {
			// Missing entries are retained, never treated as outliers.
			keep = append(keep, i)
			continue
		}
		if f >= lower && f <= upper {
			keep = append(keep, i)
		}
	}
	return keep
}
