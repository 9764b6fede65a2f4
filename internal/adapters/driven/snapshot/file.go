package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/telemachus/internal/adapters/driven/cache/file"
	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.SnapshotStore = (*FileStore)(nil)

// FileStore keeps the snapshot in a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the snapshot file.
func (s *FileStore) Path() string {
	return s.path
}

// Save writes the snapshot to a temporary file and renames it into place.
func (s *FileStore) Save(ctx context.Context, snap *domain.IndexSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := file.WriteAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot. A missing file is domain.ErrNotFound.
func (s *FileStore) Load(ctx context.Context) (*domain.IndexSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("snapshot %s: %w", s.path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Decode(data)
}
