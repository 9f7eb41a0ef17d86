package cache

import (
	"context"
	"fmt"
	"sync"
)

// allKinds enumerates the key prefixes checked during invalidation.
var allKinds = []Kind{KindObject, KindTimeDomain, KindFrequencyDomain}

// MemoryCache is a mutex-guarded in-process Cache keyed "kind:id".
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]any
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]any)}
}

func key(kind Kind, id string) string {
	return fmt.Sprintf("%s:%s", kind, id)
}

// Get returns the cached value for (kind, id) if present.
func (c *MemoryCache) Get(_ context.Context, kind Kind, id string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key(kind, id)]
	return v, ok
}

// Set stores a value under (kind, id).
func (c *MemoryCache) Set(_ context.Context, kind Kind, id string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key(kind, id)] = value
}

// InvalidateSeries drops every cached representation of the series and
// returns the number of entries removed.
func (c *MemoryCache) InvalidateSeries(_ context.Context, id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	for _, kind := range allKinds {
		k := key(kind, id)
		if _, ok := c.entries[k]; ok {
			delete(c.entries, k)
			dropped++
		}
	}
	return dropped
}

// Clear empties the cache.
func (c *MemoryCache) Clear(_ context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := len(c.entries)
	c.entries = make(map[string]any)
	return dropped
}
