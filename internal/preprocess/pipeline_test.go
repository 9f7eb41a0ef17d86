package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsanalyzer/pkg/contracts/domain"
)

func TestApplyChainsOperations(t *testing.T) {
	p := New(testTable(t))

	result, err := p.Apply([]domain.Operation{
		{Type: domain.OpMissingValues, Params: map[string]any{"method": "ffill"}},
		{Type: domain.OpOutliers, Params: map[string]any{"method": "iqr", "threshold": 1.5}},
		{Type: domain.OpNormalize, Params: map[string]any{"columns": []any{"value"}, "method": "minmax"}},
	})
	require.NoError(t, err)

	// Gaps were filled before the outlier pass, so only the 1000 row drops.
	assert.Equal(t, 9, result.RowCount())
	vals := present(result.Column("value"))
	require.Len(t, vals, 9)
	lo, hi := minMax(vals)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
}

func TestApplySkipsUnknownOperations(t *testing.T) {
	p := New(testTable(t))

	result, err := p.Apply([]domain.Operation{
		{Type: "detrend", Params: map[string]any{"degree": 2}},
		{Type: domain.OpMissingValues, Params: map[string]any{"method": "bfill"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, result.RowCount())
	assert.False(t, result.Column("value")[2].IsMissing())
}

func TestApplySkipsResampleWithoutColumns(t *testing.T) {
	p := New(testTable(t))

	result, err := p.Apply([]domain.Operation{
		{Type: domain.OpResample, Params: map[string]any{"freq": "1d"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, result.RowCount())
}

func TestApplyResample(t *testing.T) {
	p := New(testTable(t))

	result, err := p.Apply([]domain.Operation{
		{Type: domain.OpResample, Params: map[string]any{
			"time_column":   "date",
			"value_columns": []any{"value"},
			"freq":          "2d",
			"agg_func":      "sum",
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, result.RowCount())
	assert.Equal(t, []string{"date", "value"}, result.Columns())
}

func TestApplyConstantFill(t *testing.T) {
	p := New(testTable(t))

	result, err := p.Apply([]domain.Operation{
		{Type: domain.OpMissingValues, Params: map[string]any{
			"columns": []any{"value"},
			"method":  "constant",
			"value":   0.0,
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, floatAt(t, result, "value", 2))
}

func TestApplyPropagatesErrors(t *testing.T) {
	p := New(testTable(t))

	_, err := p.Apply([]domain.Operation{
		{Type: domain.OpResample, Params: map[string]any{
			"time_column":   "date",
			"value_columns": []any{"no_such_column"},
		}},
	})
	assert.True(t, domain.IsKind(err, domain.ErrMissingColumns))
}
