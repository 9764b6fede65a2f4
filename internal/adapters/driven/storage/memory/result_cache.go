package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
)

var _ driven.ResultCache = (*ResultCache)(nil)

type cacheEntry struct {
	records   []domain.NormalizedRecord
	expiresAt time.Time
}

// ResultCache keeps live search results in a map.
type ResultCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewResultCache creates an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{entries: make(map[string]cacheEntry), now: time.Now}
}

// Get returns a copy of the records if the entry has not expired.
func (c *ResultCache) Get(_ context.Context, key string) ([]domain.NormalizedRecord, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return append([]domain.NormalizedRecord{}, e.records...), true, nil
}

// Put stores a copy of records for ttl. A non-positive ttl is a no-op.
func (c *ResultCache) Put(_ context.Context, key string, records []domain.NormalizedRecord, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		records:   append([]domain.NormalizedRecord{}, records...),
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// Purge drops expired entries.
func (c *ResultCache) Purge(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	return nil
}

// Len returns the number of stored entries, expired or not.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
