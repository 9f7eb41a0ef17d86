// Package timeseries implements the time series domain model: column
// resolution and validation, time-axis normalization, and the time-domain
// and frequency-domain projections of a validated series.
package timeseries

import (
	"strings"

	"github.com/google/uuid"

	"tsanalyzer/internal/dataset"
	"tsanalyzer/pkg/contracts/domain"
)

// Series is the identity-bearing aggregate of validated time-indexed tabular
// data. It owns its dataset exclusively: the factory deep-copies the input
// and nothing mutates the data after construction.
type Series struct {
	ID           string
	Data         *dataset.Dataset
	TimeColumn   string
	ValueColumns []string
}

// New validates raw tabular input and builds a series with a generated id.
// An empty timeColumn defaults to the first column; nil valueColumns default
// to every other column that survives numeric coercion.
func New(data *dataset.Dataset, timeColumn string, valueColumns []string) (*Series, error) {
	return NewWithID(uuid.New().String(), data, timeColumn, valueColumns)
}

// NewWithID builds a series with an explicit id. Used by replace-on-update,
// which preserves the identity of the aggregate it replaces.
func NewWithID(id string, data *dataset.Dataset, timeColumn string, valueColumns []string) (*Series, error) {
	if data == nil || data.RowCount() == 0 {
		return nil, domain.NewError(domain.ErrInvalidColumn, "dataset is empty")
	}

	owned := data.Clone()
	timeColumn, resolved, err := resolveColumns(owned, timeColumn, valueColumns)
	if err != nil {
		return nil, err
	}
	if err := normalizeTimeAxis(owned, timeColumn); err != nil {
		return nil, err
	}

	return &Series{
		ID:           id,
		Data:         owned,
		TimeColumn:   timeColumn,
		ValueColumns: resolved,
	}, nil
}

// resolveColumns infers and validates the time column and value columns,
// coercing value columns to numeric in place. Cells that fail coercion
// become missing; columns where every cell fails are dropped from the value
// set. The dataset passed in is owned by the caller.
func resolveColumns(data *dataset.Dataset, timeColumn string, valueColumns []string) (string, []string, error) {
	columns := data.Columns()

	if strings.TrimSpace(timeColumn) == "" {
		timeColumn = columns[0]
	}
	if !data.HasColumn(timeColumn) {
		return "", nil, domain.NewError(domain.ErrInvalidColumn,
			"time column %q not found, available columns: %s", timeColumn, strings.Join(columns, ", "))
	}

	candidates := valueColumns
	explicit := len(valueColumns) > 0
	if !explicit {
		for _, name := range columns {
			if name != timeColumn {
				candidates = append(candidates, name)
			}
		}
	}

	var resolved []string
	for _, name := range candidates {
		if strings.TrimSpace(name) == "" || !data.HasColumn(name) {
			if explicit {
				return "", nil, domain.NewError(domain.ErrInvalidColumn,
					"value column %q not found, available columns: %s", name, strings.Join(columns, ", "))
			}
			continue
		}
		if coerceNumericColumn(data, name) {
			resolved = append(resolved, name)
		}
	}
	if len(resolved) == 0 {
		return "", nil, domain.NewError(domain.ErrNoValidColumns,
			"no value columns could be resolved to numeric data")
	}
	return timeColumn, resolved, nil
}

// coerceNumericColumn rewrites the named column into the numeric domain and
// reports whether at least one cell survived.
func coerceNumericColumn(data *dataset.Dataset, name string) bool {
	cells := data.Column(name)
	coerced := make([]dataset.Value, len(cells))
	survived := false
	for i, c := range cells {
		coerced[i] = dataset.CoerceNumber(c)
		if !coerced[i].IsMissing() {
			survived = true
		}
	}
	if !survived {
		return false
	}
	data.SetColumn(name, coerced)
	return true
}

// normalizeTimeAxis ensures the time column is either a uniform numeric axis
// or a fully parsed temporal axis. Numeric epochs, offsets and plain indices
// are all accepted as-is. Unlike value columns, the time axis tolerates no
// partial parse: a single unparseable entry fails the whole axis.
func normalizeTimeAxis(data *dataset.Dataset, timeColumn string) error {
	cells := data.Column(timeColumn)

	numeric := true
	for _, c := range cells {
		if c.Kind() != dataset.KindNumber {
			numeric = false
			break
		}
	}
	if numeric {
		return nil
	}

	parsed := make([]dataset.Value, len(cells))
	successes := 0
	failed := -1
	for i, c := range cells {
		t, ok := dataset.CoerceTime(c)
		if !ok {
			if failed < 0 {
				failed = i
			}
			continue
		}
		parsed[i] = dataset.Timestamp(t)
		successes++
	}
	if successes == 0 {
		return domain.NewError(domain.ErrUnparseableTime,
			"time column %q contains no parseable date/time values", timeColumn)
	}
	if failed >= 0 {
		return domain.NewError(domain.ErrUnparseableTime,
			"time column %q has an unparseable entry at row %d", timeColumn, failed)
	}
	data.SetColumn(timeColumn, parsed)
	return nil
}

// Summary returns the list-view shape of the series.
func (s *Series) Summary() domain.SeriesSummary {
	return domain.SeriesSummary{
		AnalysisID:   s.ID,
		Columns:      s.Data.Columns(),
		TimeColumn:   s.TimeColumn,
		ValueColumns: append([]string(nil), s.ValueColumns...),
		RowCount:     s.Data.RowCount(),
	}
}
