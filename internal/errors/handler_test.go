package errors

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsanalyzer/pkg/contracts/domain"
)

func testHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleErrorDomainKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "invalid column",
			err:        domain.NewError(domain.ErrInvalidColumn, "column nope not found"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "missing columns",
			err:        domain.NewError(domain.ErrMissingColumns, "columns not found: a, b"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "unparseable time",
			err:        domain.NewError(domain.ErrUnparseableTime, "cannot parse time column"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "not initialized",
			err:        domain.NewError(domain.ErrNotInitialized, "no data loaded"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "no valid columns",
			err:        domain.NewError(domain.ErrNoValidColumns, "no numeric columns"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeUnprocessable,
		},
		{
			name:       "insufficient samples",
			err:        domain.NewError(domain.ErrInsufficientSamples, "need at least 2 samples"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeUnprocessable,
		},
		{
			name:       "not found",
			err:        domain.NewError(domain.ErrNotFound, "no time series found with id x"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "frequency domain",
			err:        domain.NewError(domain.ErrFrequencyDomain, "fft failed"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeSpectral,
		},
	}

	h := testHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/series/x", nil)

			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, tt.err.Error(), body["detail"])
			kind, _ := domain.KindOf(tt.err)
			assert.Equal(t, string(kind), body["error_code"])
		})
	}
}

func TestHandleErrorAPIError(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/series", nil)

	h.HandleError(rec, req, ErrValidation("rows", "rows is required"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeValidation, body["type"])
	assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
}

func TestHandleErrorUnknown(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/series", nil)

	h.HandleError(rec, req, io.ErrUnexpectedEOF)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeInternal, body["type"])
}

func TestHandleErrorContextCancelled(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/series", nil)

	h.HandleError(rec, req, context.Canceled)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestNotFoundHandler(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)

	h.NotFound(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeNotFound, body["type"])
}

func TestProblemDetailsMarshalExtensions(t *testing.T) {
	pd := NewProblemDetails(400, TypeValidation, "Validation Failed", "bad input", "/api/series").
		WithExtension("error_code", "VALIDATION_FAILED")

	raw, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Validation Failed", body["title"])
	assert.Equal(t, float64(400), body["status"])
	assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
}
