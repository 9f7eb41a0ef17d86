package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsanalyzer/internal/cache"
	apierrors "tsanalyzer/internal/errors"
	"tsanalyzer/internal/services"
	"tsanalyzer/internal/store"
	"tsanalyzer/internal/timeseries"
)

func newTestRouter() chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := apierrors.NewErrorHandler(logger, false)

	seriesSvc := services.NewSeriesService(store.NewMemoryRepository(), cache.NewMemoryCache(), timeseries.DefaultSpectralConfig(), logger)
	preprocessSvc := services.NewPreprocessService(logger)

	r := chi.NewRouter()
	r.Mount("/api/series", NewSeriesHandler(seriesSvc, logger, errorHandler).Routes())
	r.Mount("/api/preprocess", NewPreprocessHandler(preprocessSvc, logger, errorHandler).Routes())
	r.Mount("/api/health", NewHealthHandler().Routes())
	return r
}

func postJSON(t *testing.T, router chi.Router, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

const createBody = `{
	"rows": [
		{"time": 1, "value": 10},
		{"time": 2, "value": 20},
		{"time": 3, "value": 30},
		{"time": 4, "value": 40}
	]
}`

func createSeries(t *testing.T, router chi.Router) string {
	t.Helper()
	rec := postJSON(t, router, "/api/series", createBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	id, _ := body["analysis_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestCreateSeriesKeepsDocumentColumnOrder(t *testing.T) {
	router := newTestRouter()
	// "time" precedes "alpha" in the document; it must stay the default
	// time column even though sorted keys would put "alpha" first.
	body := `{"rows":[{"time":1,"alpha":10},{"time":2,"alpha":20},{"time":3,"alpha":30}]}`

	rec := postJSON(t, router, "/api/series", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeBody(t, rec)
	assert.Equal(t, "time", resp["time_column"])
	assert.Equal(t, []any{"time", "alpha"}, resp["columns"])
}

func TestCreateSeries(t *testing.T) {
	router := newTestRouter()
	rec := postJSON(t, router, "/api/series", createBody)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "time", body["time_column"])
	assert.Equal(t, []any{"value"}, body["value_columns"])

	td, ok := body["time_domain"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, td["time"], 4)
	assert.Nil(t, body["frequency_domain"])
}

func TestCreateSeriesMalformedJSON(t *testing.T) {
	router := newTestRouter()
	rec := postJSON(t, router, "/api/series", `{"rows": [`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, apierrors.TypeValidation, body["type"])
}

func TestCreateSeriesNoRows(t *testing.T) {
	router := newTestRouter()
	rec := postJSON(t, router, "/api/series", `{"rows": []}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSeriesUnknownColumn(t *testing.T) {
	router := newTestRouter()
	rec := postJSON(t, router, "/api/series", `{
		"rows": [{"time": 1, "value": 10}, {"time": 2, "value": 20}],
		"time_column": "nope"
	}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "invalid_column", body["error_code"])
}

func TestCreateSeriesNoNumericColumns(t *testing.T) {
	router := newTestRouter()
	rec := postJSON(t, router, "/api/series", `{
		"rows": [{"time": 1, "label": "a"}, {"time": 2, "label": "b"}],
		"time_column": "time"
	}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "no_valid_columns", body["error_code"])
}

func TestCreateSeriesFromCSVUpload(t *testing.T) {
	router := newTestRouter()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "readings.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("time,temp\n1,10.5\n2,20.5\n3,30.5\n"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("time_column", "time"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/series", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "time", body["time_column"])
	assert.Equal(t, []any{"temp"}, body["value_columns"])
}

func TestCreateSeriesFromUnsupportedUpload(t *testing.T) {
	router := newTestRouter()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "data.parquet")
	require.NoError(t, err)
	part.Write([]byte("binary"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/series", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestGetSeriesFrequencyDomain(t *testing.T) {
	router := newTestRouter()
	id := createSeries(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/series/"+id+"?domain=frequency", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	fd, ok := body["frequency_domain"].(map[string]any)
	require.True(t, ok)
	freqs, ok := fd["frequencies"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, freqs["value"])
}

func TestGetSeriesInvalidDomain(t *testing.T) {
	router := newTestRouter()
	id := createSeries(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/series/"+id+"?domain=wavelet", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSeriesNotFound(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/series/unknown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, apierrors.TypeNotFound, body["type"])
}

func TestReplaceSeries(t *testing.T) {
	router := newTestRouter()
	id := createSeries(t, router)

	req := httptest.NewRequest(http.MethodPut, "/api/series/"+id, strings.NewReader(`{
		"rows": [{"time": 1, "value": 5}, {"time": 2, "value": 6}]
	}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, id, body["analysis_id"])
	td := body["time_domain"].(map[string]any)
	assert.Len(t, td["time"], 2)
}

func TestDeleteSeries(t *testing.T) {
	router := newTestRouter()
	id := createSeries(t, router)

	req := httptest.NewRequest(http.MethodDelete, "/api/series/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/series/"+id, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSeries(t *testing.T) {
	router := newTestRouter()
	createSeries(t, router)
	createSeries(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/series", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["count"])
}

func TestExportTimeDomainCSV(t *testing.T) {
	router := newTestRouter()
	id := createSeries(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/series/"+id+"/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "time,value", lines[0])
	assert.Equal(t, "1,10", lines[1])
}

func TestExportFrequencyDomainCSV(t *testing.T) {
	router := newTestRouter()
	id := createSeries(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/series/"+id+"/export?domain=frequency", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	assert.Equal(t, "value_frequency,value_amplitude", lines[0])
}

func TestExportInvalidFormat(t *testing.T) {
	router := newTestRouter()
	id := createSeries(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/series/"+id+"/export?format=pdf", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/api/health", "/api/health/live", "/api/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
