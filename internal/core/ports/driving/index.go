package driving

import (
	"context"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

// IndexBuilder produces index snapshots.
type IndexBuilder interface {
	// Build discovers, fetches, normalises and deduplicates records,
	// then persists a new snapshot atomically.
	Build(ctx context.Context, opts domain.BuildOptions) (*domain.IndexSnapshot, error)

	// History returns recent build runs, most recent first.
	History(ctx context.Context, limit int) ([]domain.BuildRun, error)
}

// IndexLoader provides the process-wide snapshot.
type IndexLoader interface {
	// Load returns the snapshot, loading it on first use.
	// Returns domain.ErrIndexNotAvailable if neither local nor remote snapshot loads.
	Load(ctx context.Context) (*domain.IndexSnapshot, error)

	// Loaded returns the snapshot if one has already been loaded.
	Loaded() (*domain.IndexSnapshot, bool)
}
