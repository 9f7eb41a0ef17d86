package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "tsanalyzer/internal/errors"
)

func TestPreprocessRun(t *testing.T) {
	router := newTestRouter()

	rec := postJSON(t, router, "/api/preprocess", `{
		"rows": [{"value": 10}, {"value": null}, {"value": 30}],
		"operations": [{"type": "missing_values", "params": {"method": "ffill"}}]
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	rows, ok := body["rows"].([]any)
	require.True(t, ok)
	require.Len(t, rows, 3)
	second := rows[1].(map[string]any)
	assert.Equal(t, float64(10), second["value"])
}

func TestPreprocessRunNoOperations(t *testing.T) {
	router := newTestRouter()

	rec := postJSON(t, router, "/api/preprocess", `{
		"rows": [{"value": 10}],
		"operations": []
	}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, apierrors.TypeValidation, body["type"])
}

func TestPreprocessRunMissingColumns(t *testing.T) {
	router := newTestRouter()

	rec := postJSON(t, router, "/api/preprocess", `{
		"rows": [{"ts": 1, "value": 10}],
		"operations": [{"type": "resample", "params": {
			"time_column": "ts",
			"value_columns": ["pressure"],
			"frequency": "1d"
		}}]
	}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "missing_columns", body["error_code"])
}

func TestPreprocessRunUnknownOperationSkipped(t *testing.T) {
	router := newTestRouter()

	rec := postJSON(t, router, "/api/preprocess", `{
		"rows": [{"value": 10}],
		"operations": [{"type": "detrend"}]
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Len(t, body["rows"], 1)
}
