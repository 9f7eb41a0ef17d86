// Package http exposes the analysis API over REST with RFC 7807 errors.
package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"tsanalyzer/internal/dataset"
	apierrors "tsanalyzer/internal/errors"
	"tsanalyzer/internal/exporter"
	"tsanalyzer/internal/middleware"
	"tsanalyzer/internal/services"
	"tsanalyzer/pkg/contracts/domain"
)

// SeriesHandler handles the series lifecycle endpoints.
type SeriesHandler struct {
	service      *services.SeriesService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validator    *middleware.Validator
}

// NewSeriesHandler creates a new series handler with RFC 7807 error handling
func NewSeriesHandler(service *services.SeriesService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SeriesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeriesHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "series_handler")),
		errorHandler: errorHandler,
		validator:    middleware.NewValidator(),
	}
}

// Routes returns the series routes with proper Chi patterns
func (h *SeriesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Create)
	r.Get("/", h.List)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.SeriesCtx)
		r.Get("/", h.Get)
		r.Put("/", h.Replace)
		r.Delete("/", h.Delete)
		r.Get("/export", h.Export)
	})

	return r
}

// SeriesCtx middleware validates the id parameter
func (h *SeriesHandler) SeriesCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "Series id is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Create handles POST /api/series. JSON bodies carry rows inline;
// multipart bodies carry a CSV or XLSX file upload.
func (h *SeriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		h.createFromUpload(w, r)
		return
	}

	var req domain.AnalysisRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.handleBodyError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Process(r.Context(), &req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// createFromUpload decodes a CSV or XLSX file from a multipart form.
// Optional time_column and value_columns fields steer column resolution.
func (h *SeriesHandler) createFromUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		h.handleBodyError(w, r, err)
		return
	}
	defer file.Close()

	var data *dataset.Dataset
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		data, err = dataset.FromCSV(file)
	case ".xlsx":
		data, err = dataset.FromXLSX(file)
	default:
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusUnsupportedMediaType,
			"UNSUPPORTED_MEDIA_TYPE",
			fmt.Sprintf("Unsupported upload format: %s", filepath.Ext(header.Filename)),
			"supported formats: .csv, .xlsx",
		))
		return
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	timeColumn := r.FormValue("time_column")
	var valueColumns []string
	if raw := r.FormValue("value_columns"); raw != "" {
		for _, col := range strings.Split(raw, ",") {
			valueColumns = append(valueColumns, strings.TrimSpace(col))
		}
	}

	h.logger.InfoContext(r.Context(), "processing file upload",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
		slog.Int("rows", data.RowCount()))

	resp, err := h.service.ProcessDataset(r.Context(), data, timeColumn, valueColumns)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// Get handles GET /api/series/{id}?domain=time|frequency
func (h *SeriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	domainKind, ok := h.domainParam(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), domainKind)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, resp)
}

// Replace handles PUT /api/series/{id}
func (h *SeriesHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req domain.AnalysisRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.handleBodyError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Replace(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, resp)
}

// Delete handles DELETE /api/series/{id}
func (h *SeriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// List handles GET /api/series
func (h *SeriesHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.List(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{
		"series": summaries,
		"count":  len(summaries),
	})
}

// Export handles GET /api/series/{id}/export?domain=&format=
func (h *SeriesHandler) Export(w http.ResponseWriter, r *http.Request) {
	domainKind, ok := h.domainParam(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "format must be csv or xlsx"))
		return
	}

	id := chi.URLParam(r, "id")
	resp, err := h.service.Get(r.Context(), id, domainKind)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("series_%s_%s.%s", id, domainKind, format)
	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	switch {
	case domainKind == services.DomainFrequency && format == "csv":
		err = exporter.FrequencyDomainCSV(w, resp.FrequencyDomain, resp.ValueColumns)
	case domainKind == services.DomainFrequency:
		err = exporter.FrequencyDomainXLSX(w, resp.FrequencyDomain, resp.ValueColumns)
	case format == "csv":
		err = exporter.TimeDomainCSV(w, resp.TimeDomain, resp.TimeColumn, resp.ValueColumns)
	default:
		err = exporter.TimeDomainXLSX(w, resp.TimeDomain, resp.TimeColumn, resp.ValueColumns)
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("series_id", id),
			slog.String("error", err.Error()))
	}
}

// domainParam validates the domain query parameter, defaulting to time.
func (h *SeriesHandler) domainParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	domainKind := r.URL.Query().Get("domain")
	if domainKind == "" {
		domainKind = services.DomainTime
	}
	if domainKind != services.DomainTime && domainKind != services.DomainFrequency {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("domain", "domain must be time or frequency"))
		return "", false
	}
	return domainKind, true
}

// handleBodyError distinguishes oversized bodies from malformed ones.
func (h *SeriesHandler) handleBodyError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
		return
	}
	h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
}
