package store

import (
	"context"
	"sort"
	"sync"

	"tsanalyzer/internal/timeseries"
	"tsanalyzer/pkg/contracts/domain"
)

// MemoryRepository is the in-process Repository backend: a mutex-guarded map
// keyed by series id. Aggregates are deep-copied on both save and lookup so
// no caller ever shares mutable state with the store.
type MemoryRepository struct {
	mu     sync.RWMutex
	series map[string]*timeseries.Series
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{series: make(map[string]*timeseries.Series)}
}

func snapshot(s *timeseries.Series) *timeseries.Series {
	return &timeseries.Series{
		ID:           s.ID,
		Data:         s.Data.Clone(),
		TimeColumn:   s.TimeColumn,
		ValueColumns: append([]string(nil), s.ValueColumns...),
	}
}

// Save stores the aggregate, replacing any existing one with the same id.
func (r *MemoryRepository) Save(_ context.Context, s *timeseries.Series) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.series[s.ID] = snapshot(s)
	return nil
}

// FindByID returns the stored aggregate or a not-found domain error.
func (r *MemoryRepository) FindByID(_ context.Context, id string) (*timeseries.Series, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.series[id]
	if !ok {
		return nil, domain.NewError(domain.ErrNotFound, "no time series found with id %s", id)
	}
	return snapshot(s), nil
}

// FindAll returns every stored aggregate ordered by id.
func (r *MemoryRepository) FindAll(_ context.Context) ([]*timeseries.Series, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*timeseries.Series, 0, len(r.series))
	for _, s := range r.series {
		out = append(out, snapshot(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete removes the aggregate. Deleting an unknown id is a not-found error.
func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.series[id]; !ok {
		return domain.NewError(domain.ErrNotFound, "no time series found with id %s", id)
	}
	delete(r.series, id)
	return nil
}

// Exists reports whether an aggregate with the given id is stored.
func (r *MemoryRepository) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.series[id]
	return ok, nil
}
