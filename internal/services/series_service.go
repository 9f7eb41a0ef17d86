// Package services wires the time series domain model to its storage and
// cache collaborators. Services receive their dependencies by constructor
// injection; nothing in this package holds package-level state.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"tsanalyzer/internal/cache"
	"tsanalyzer/internal/dataset"
	"tsanalyzer/internal/infrastructure"
	"tsanalyzer/internal/store"
	"tsanalyzer/internal/timeseries"
	"tsanalyzer/pkg/contracts/domain"
)

// Domain selects which projections Get includes in the response.
const (
	DomainTime      = "time"
	DomainFrequency = "frequency"
)

// SeriesService implements the series lifecycle: create, read with
// projections, replace, delete, list. Projections are cache-first; create,
// replace and delete invalidate every cached representation of the series.
type SeriesService struct {
	repo     store.Repository
	cache    cache.Cache
	spectral timeseries.SpectralConfig
	logger   *slog.Logger
	metrics  *infrastructure.Metrics
}

// NewSeriesService creates a series service. A nil logger falls back to the
// default slog logger.
func NewSeriesService(repo store.Repository, c cache.Cache, spectral timeseries.SpectralConfig, logger *slog.Logger) *SeriesService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeriesService{
		repo:     repo,
		cache:    c,
		spectral: spectral,
		logger:   logger.With(slog.String("component", "series_service")),
	}
}

// WithMetrics attaches metric instruments to the service. A service without
// metrics records nothing; all recording paths tolerate a nil receiver field.
func (s *SeriesService) WithMetrics(m *infrastructure.Metrics) *SeriesService {
	s.metrics = m
	return s
}

func (s *SeriesService) recordAnalysis(domainKind string) {
	if s.metrics != nil {
		s.metrics.AnalysesTotal.WithLabelValues(domainKind).Inc()
	}
}

func (s *SeriesService) recordCacheLookup(kind cache.Kind, hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHitsTotal.WithLabelValues(string(kind)).Inc()
	} else {
		s.metrics.CacheMissesTotal.WithLabelValues(string(kind)).Inc()
	}
}

// Process validates raw tabular rows into a new series, persists it, and
// returns the analysis payload with the time-domain block included.
func (s *SeriesService) Process(ctx context.Context, req *domain.AnalysisRequest) (*domain.AnalysisResponse, error) {
	data, err := dataset.FromOrderedRows(req.Rows, req.ColumnOrder)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidColumn, err, "invalid tabular input")
	}
	return s.ProcessDataset(ctx, data, req.TimeColumn, req.ValueColumns)
}

// ProcessDataset is the upload entry point for already-parsed tables.
func (s *SeriesService) ProcessDataset(ctx context.Context, data *dataset.Dataset, timeColumn string, valueColumns []string) (*domain.AnalysisResponse, error) {
	series, err := timeseries.New(data, timeColumn, valueColumns)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, series); err != nil {
		return nil, fmt.Errorf("failed to save series: %w", err)
	}

	s.logger.InfoContext(ctx, "series created",
		slog.String("series_id", series.ID),
		slog.String("time_column", series.TimeColumn),
		slog.Int("value_columns", len(series.ValueColumns)),
		slog.Int("rows", series.Data.RowCount()))

	if s.metrics != nil {
		s.metrics.SeriesStored.Inc()
	}
	s.recordAnalysis(DomainTime)

	resp := s.response(series)
	resp.TimeDomain = series.TimeDomain()
	s.cache.Set(ctx, cache.KindObject, series.ID, series)
	s.cache.Set(ctx, cache.KindTimeDomain, series.ID, resp.TimeDomain)
	return resp, nil
}

// Get returns the analysis payload for a stored series. The time-domain
// block is always present; the frequency-domain block is added when
// requested. The aggregate and both blocks are served from cache when
// possible.
func (s *SeriesService) Get(ctx context.Context, id, domainKind string) (*domain.AnalysisResponse, error) {
	series, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := s.response(series)
	resp.TimeDomain = s.timeDomain(ctx, series)
	if domainKind == DomainFrequency {
		fd, err := s.frequencyDomain(ctx, series)
		if err != nil {
			return nil, err
		}
		resp.FrequencyDomain = fd
	}
	return resp, nil
}

// lookup resolves a series aggregate cache-first, falling back to the
// repository and warming the object cache on a miss.
func (s *SeriesService) lookup(ctx context.Context, id string) (*timeseries.Series, error) {
	if v, ok := s.cache.Get(ctx, cache.KindObject, id); ok {
		if series, ok := v.(*timeseries.Series); ok {
			s.recordCacheLookup(cache.KindObject, true)
			return series, nil
		}
	}
	series, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recordCacheLookup(cache.KindObject, false)
	s.cache.Set(ctx, cache.KindObject, id, series)
	return series, nil
}

func (s *SeriesService) timeDomain(ctx context.Context, series *timeseries.Series) *domain.TimeDomainBlock {
	if v, ok := s.cache.Get(ctx, cache.KindTimeDomain, series.ID); ok {
		if block, ok := v.(*domain.TimeDomainBlock); ok {
			s.recordCacheLookup(cache.KindTimeDomain, true)
			return block
		}
	}
	s.recordCacheLookup(cache.KindTimeDomain, false)
	s.recordAnalysis(DomainTime)
	block := series.TimeDomain()
	s.cache.Set(ctx, cache.KindTimeDomain, series.ID, block)
	return block
}

func (s *SeriesService) frequencyDomain(ctx context.Context, series *timeseries.Series) (*domain.FrequencyDomainBlock, error) {
	if v, ok := s.cache.Get(ctx, cache.KindFrequencyDomain, series.ID); ok {
		if block, ok := v.(*domain.FrequencyDomainBlock); ok {
			s.recordCacheLookup(cache.KindFrequencyDomain, true)
			return block, nil
		}
	}
	s.recordCacheLookup(cache.KindFrequencyDomain, false)
	s.recordAnalysis(DomainFrequency)
	block, err := series.FrequencyDomain(s.spectral)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, cache.KindFrequencyDomain, series.ID, block)
	return block, nil
}

// Replace revalidates new raw input under an existing id, modeling update
// as destroy-and-recreate with the identity preserved. Every cached
// projection of the old revision is invalidated.
func (s *SeriesService) Replace(ctx context.Context, id string, req *domain.AnalysisRequest) (*domain.AnalysisResponse, error) {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check series existence: %w", err)
	}
	if !exists {
		return nil, domain.NewError(domain.ErrNotFound, "no time series found with id %s", id)
	}

	data, err := dataset.FromOrderedRows(req.Rows, req.ColumnOrder)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidColumn, err, "invalid tabular input")
	}
	series, err := timeseries.NewWithID(id, data, req.TimeColumn, req.ValueColumns)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, series); err != nil {
		return nil, fmt.Errorf("failed to save series: %w", err)
	}

	dropped := s.cache.InvalidateSeries(ctx, id)
	s.recordAnalysis(DomainTime)
	s.logger.InfoContext(ctx, "series replaced",
		slog.String("series_id", id),
		slog.Int("cache_entries_invalidated", dropped))

	resp := s.response(series)
	resp.TimeDomain = series.TimeDomain()
	s.cache.Set(ctx, cache.KindObject, id, series)
	s.cache.Set(ctx, cache.KindTimeDomain, id, resp.TimeDomain)
	return resp, nil
}

// Delete removes the series and invalidates its cached projections.
func (s *SeriesService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	dropped := s.cache.InvalidateSeries(ctx, id)
	if s.metrics != nil {
		s.metrics.SeriesStored.Dec()
	}
	s.logger.InfoContext(ctx, "series deleted",
		slog.String("series_id", id),
		slog.Int("cache_entries_invalidated", dropped))
	return nil
}

// List returns summaries of every stored series.
func (s *SeriesService) List(ctx context.Context) ([]domain.SeriesSummary, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	out := make([]domain.SeriesSummary, 0, len(all))
	for _, series := range all {
		out = append(out, series.Summary())
	}
	return out, nil
}

func (s *SeriesService) response(series *timeseries.Series) *domain.AnalysisResponse {
	return &domain.AnalysisResponse{
		AnalysisID:   series.ID,
		Columns:      series.Data.Columns(),
		TimeColumn:   series.TimeColumn,
		ValueColumns: append([]string(nil), series.ValueColumns...),
	}
}
