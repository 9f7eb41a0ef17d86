package services

import (
	"context"
	"log/slog"

	"tsanalyzer/internal/dataset"
	"tsanalyzer/internal/preprocess"
	"tsanalyzer/pkg/contracts/domain"
)

// PreprocessService runs ad-hoc preprocessing pipelines over uploaded rows.
// It is stateless; each call builds a fresh preprocessor around the input.
type PreprocessService struct {
	logger *slog.Logger
}

// NewPreprocessService creates a preprocessing service. A nil logger falls
// back to the default slog logger.
func NewPreprocessService(logger *slog.Logger) *PreprocessService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreprocessService{
		logger: logger.With(slog.String("component", "preprocess_service")),
	}
}

// Run applies the requested operations in order and returns the resulting
// table as JSON rows.
func (s *PreprocessService) Run(ctx context.Context, req *domain.PreprocessRequest) (*domain.PreprocessResponse, error) {
	data, err := dataset.FromOrderedRows(req.Rows, req.ColumnOrder)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidColumn, err, "invalid tabular input")
	}

	result, err := preprocess.New(data).Apply(req.Operations)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "preprocessing pipeline applied",
		slog.Int("operations", len(req.Operations)),
		slog.Int("rows_in", data.RowCount()),
		slog.Int("rows_out", result.RowCount()))

	return &domain.PreprocessResponse{
		Columns: result.Columns(),
		Rows:    result.Rows(),
	}, nil
}
