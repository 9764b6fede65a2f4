package driven

import (
	"context"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

// SnapshotStore persists the index snapshot on the local filesystem.
type SnapshotStore interface {
	// Save writes the snapshot, replacing any previous one atomically.
	// Readers never observe a partially written file.
	Save(ctx context.Context, snapshot *domain.IndexSnapshot) error

	// Load reads and validates the snapshot.
	// Returns domain.ErrNotFound if no snapshot exists.
	Load(ctx context.Context) (*domain.IndexSnapshot, error)

	// Path returns the snapshot file location.
	Path() string
}

// SnapshotSource fetches a snapshot from a remote location.
type SnapshotSource interface {
	// Fetch downloads and decodes the snapshot.
	Fetch(ctx context.Context) (*domain.IndexSnapshot, error)

	// Location returns the remote location for diagnostics.
	Location() string
}

// SnapshotPublisher uploads a snapshot so other processes can fetch it.
type SnapshotPublisher interface {
	// Publish uploads the snapshot and returns its remote location.
	Publish(ctx context.Context, snapshot *domain.IndexSnapshot) (string, error)
}
