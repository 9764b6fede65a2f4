package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

// DocumentCache stores downloaded upstream payloads per jurisdiction.
// Entries older than the cache TTL are treated as missing.
type DocumentCache interface {
	// Get returns the cached payload and true if a fresh entry exists.
	Get(jurisdiction, name string) ([]byte, bool, error)

	// Put stores a payload. Concurrent writers to the same name use
	// atomic replace so readers never see a partial entry.
	Put(jurisdiction, name string, data []byte) error
}

// ResultCache stores live search results keyed by request.
type ResultCache interface {
	// Get returns cached records and true if a non-expired entry exists.
	Get(ctx context.Context, key string) ([]domain.NormalizedRecord, bool, error)

	// Put stores records for ttl.
	Put(ctx context.Context, key string, records []domain.NormalizedRecord, ttl time.Duration) error

	// Purge removes expired entries.
	Purge(ctx context.Context) error
}
