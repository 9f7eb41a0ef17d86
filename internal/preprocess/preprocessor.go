// Package preprocess implements the data-cleaning pipeline for raw tabular
// input: missing-value handling, outlier removal, normalization and
// resampling. A Preprocessor holds the dataset being worked on between
// calls; every operation reads the held dataset and replaces it with its
// output, so operations chain naturally.
//
// A Preprocessor instance belongs to a single logical pipeline execution.
// It is not safe for concurrent use.
package preprocess

import (
	"tsanalyzer/internal/dataset"
	"tsanalyzer/pkg/contracts/domain"
)

// Preprocessor holds the dataset under transformation.
type Preprocessor struct {
	data *dataset.Dataset
}

// New creates a preprocessor, optionally seeded with a dataset. The dataset
// is copied so the caller's table is never mutated.
func New(data *dataset.Dataset) *Preprocessor {
	p := &Preprocessor{}
	if data != nil {
		p.data = data.Clone()
	}
	return p
}

// SetData replaces the held dataset.
func (p *Preprocessor) SetData(data *dataset.Dataset) error {
	if data == nil || data.RowCount() == 0 {
		return domain.NewError(domain.ErrNotInitialized, "cannot set empty data")
	}
	p.data = data.Clone()
	return nil
}

// Data returns the currently held dataset, or nil if none was set.
func (p *Preprocessor) Data() *dataset.Dataset {
	return p.data
}

// ready guards every operation against a missing dataset.
func (p *Preprocessor) ready() error {
	if p.data == nil {
		return domain.NewError(domain.ErrNotInitialized, "data not set, call SetData before processing")
	}
	return nil
}

// targetColumns resolves the column list for an operation: an explicit list
// filtered to existing (and, when numericOnly, numeric) columns, or the
// corresponding default over all columns.
func (p *Preprocessor) targetColumns(columns []string, numericOnly bool) []string {
	if columns == nil {
		if numericOnly {
			return p.data.NumericColumns()
		}
		return p.data.Columns()
	}
	var out []string
	for _, name := range columns {
		if !p.data.HasColumn(name) {
			continue
		}
		if numericOnly && !p.data.IsNumericColumn(name) {
			continue
		}
		out = append(out, name)
	}
	return out
}
