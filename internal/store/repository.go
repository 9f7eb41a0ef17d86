// Package store provides the persistence boundary for series aggregates.
// The core depends only on the Repository interface; backends are wired in
// at application construction.
package store

import (
	"context"

	"tsanalyzer/internal/timeseries"
)

// Repository stores validated series aggregates. Lookups must return an
// aggregate equivalent to the one saved: same dataset values, time column
// and value columns.
type Repository interface {
	Save(ctx context.Context, s *timeseries.Series) error
	FindByID(ctx context.Context, id string) (*timeseries.Series, error)
	FindAll(ctx context.Context) ([]*timeseries.Series, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}
