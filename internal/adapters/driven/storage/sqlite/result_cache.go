package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oarkflow/json"

	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
)

// resultCache implements driven.ResultCache.
// Entries are stored as JSON record arrays with an absolute expiry.
type resultCache struct {
	store *Store
	now   func() time.Time
}

var _ driven.ResultCache = (*resultCache)(nil)

func (c *resultCache) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

// Get returns the cached records if the entry has not expired.
func (c *resultCache) Get(ctx context.Context, key string) ([]domain.NormalizedRecord, bool, error) {
	var payload string
	var expiresAt int64
	err := c.store.db.QueryRowContext(ctx,
		`SELECT records, expires_at FROM result_cache WHERE cache_key = ?`, key).
		Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading result cache: %w", err)
	}
	if c.clock().Unix() >= expiresAt {
		return nil, false, nil
	}

	var records []domain.NormalizedRecord
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		// An undecodable entry is a miss.
		return nil, false, nil
	}
	if records == nil {
		records = []domain.NormalizedRecord{}
	}
	return records, true, nil
}

// Put stores records under key for ttl. A non-positive ttl is a no-op.
func (c *resultCache) Put(ctx context.Context, key string, records []domain.NormalizedRecord, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if records == nil {
		records = []domain.NormalizedRecord{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding cached records: %w", err)
	}

	now := c.clock()
	_, err = c.store.db.ExecContext(ctx, `
		INSERT INTO result_cache (cache_key, records, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			records = excluded.records,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, key, string(payload), now.Unix(), now.Add(ttl).Unix())
	if err != nil {
		return fmt.Errorf("writing result cache: %w", err)
	}
	return nil
}

// Purge deletes expired entries.
func (c *resultCache) Purge(ctx context.Context) error {
	if _, err := c.store.db.ExecContext(ctx,
		`DELETE FROM result_cache WHERE expires_at <= ?`, c.clock().Unix()); err != nil {
		return fmt.Errorf("purging result cache: %w", err)
	}
	return nil
}
