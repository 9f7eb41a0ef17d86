// Package cache memoizes computed projections and serialized series
// payloads, keyed by data kind plus series id. Entries for a series are
// invalidated together whenever the aggregate is updated or deleted.
package cache

import "context"

// Kind distinguishes the cached representations of one series.
type Kind string

const (
	KindObject          Kind = "timeseries_object"
	KindTimeDomain      Kind = "time_domain"
	KindFrequencyDomain Kind = "frequency_domain"
)

// Cache is the memoization collaborator used by the service layer.
type Cache interface {
	Get(ctx context.Context, kind Kind, id string) (any, bool)
	Set(ctx context.Context, kind Kind, id string, value any)
	// InvalidateSeries removes every entry for the given id across all
	// kinds and returns how many entries were dropped.
	InvalidateSeries(ctx context.Context, id string) int
	// Clear empties the cache and returns the number of dropped entries.
	Clear(ctx context.Context) int
}
