package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "tsanalyzer/internal/errors"
	"tsanalyzer/internal/middleware"
	"tsanalyzer/internal/services"
	"tsanalyzer/pkg/contracts/domain"
)

// PreprocessHandler handles the ad-hoc preprocessing endpoint.
type PreprocessHandler struct {
	service      *services.PreprocessService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validator    *middleware.Validator
}

// NewPreprocessHandler creates a new preprocessing handler
func NewPreprocessHandler(service *services.PreprocessService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PreprocessHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreprocessHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "preprocess_handler")),
		errorHandler: errorHandler,
		validator:    middleware.NewValidator(),
	}
}

// Routes returns the preprocessing routes
func (h *PreprocessHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/", h.Run)
	return r
}

// Run handles POST /api/preprocess
func (h *PreprocessHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req domain.PreprocessRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Run(r.Context(), &req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, resp)
}
