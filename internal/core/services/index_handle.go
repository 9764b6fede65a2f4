package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
	"github.com/custodia-labs/telemachus/internal/core/ports/driving"
	"github.com/custodia-labs/telemachus/internal/index"
	"github.com/custodia-labs/telemachus/internal/logger"
)

// Ensure IndexHandle implements the interface.
var _ driving.IndexLoader = (*IndexHandle)(nil)

// LoadRetryInterval is how long a failed load is reported without another
// attempt.
const LoadRetryInterval = 30 * time.Second

// IndexHandle lazily loads the snapshot and keeps it for the lifetime of
// the process. Concurrent callers share one load attempt. A failed load is
// remembered for LoadRetryInterval, after which the next call retries.
type IndexHandle struct {
	local  driven.SnapshotStore
	remote driven.SnapshotSource

	retryInterval time.Duration
	now           func() time.Time
	flight        singleflight.Group

	mu       sync.Mutex
	snapshot *domain.IndexSnapshot
	searcher *index.Searcher
	failErr  error
	failedAt time.Time
}

// NewIndexHandle creates a handle that tries local, then remote.
// Either may be nil.
func NewIndexHandle(local driven.SnapshotStore, remote driven.SnapshotSource) *IndexHandle {
	return &IndexHandle{
		local:         local,
		remote:        remote,
		retryInterval: LoadRetryInterval,
		now:           time.Now,
	}
}

// NewFixedIndexHandle returns a handle already holding snapshot.
func NewFixedIndexHandle(snapshot *domain.IndexSnapshot) *IndexHandle {
	h := NewIndexHandle(nil, nil)
	if snapshot != nil {
		h.set(snapshot)
	}
	return h
}

// Load returns the snapshot, loading it on first use.
func (h *IndexHandle) Load(ctx context.Context) (*domain.IndexSnapshot, error) {
	snap, _, err := h.load(ctx)
	return snap, err
}

// Loaded returns the snapshot if one has already been loaded.
// It does not wait for a load in progress.
func (h *IndexHandle) Loaded() (*domain.IndexSnapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshot, h.snapshot != nil
}

// Searcher returns the snapshot with a searcher over it.
func (h *IndexHandle) Searcher(ctx context.Context) (*domain.IndexSnapshot, *index.Searcher, error) {
	return h.load(ctx)
}

func (h *IndexHandle) load(ctx context.Context) (*domain.IndexSnapshot, *index.Searcher, error) {
	if snap, searcher, done, err := h.current(); done {
		return snap, searcher, err
	}

	_, err, _ := h.flight.Do("snapshot", func() (any, error) {
		if _, _, done, err := h.current(); done {
			return nil, err
		}

		snap, err := h.fetch(ctx)

		h.mu.Lock()
		defer h.mu.Unlock()
		if err != nil {
			// A cancelled caller says nothing about the sources.
			if ctx.Err() == nil {
				h.failErr = err
				h.failedAt = h.now()
			}
			return nil, err
		}
		h.set(snap)
		return nil, nil
	})
	if err != nil {
		return nil, nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshot, h.searcher, nil
}

// current reports a loaded snapshot or a recent failure. done is false when
// a load should be attempted.
func (h *IndexHandle) current() (*domain.IndexSnapshot, *index.Searcher, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.snapshot != nil {
		return h.snapshot, h.searcher, true, nil
	}
	if h.failErr != nil && h.now().Sub(h.failedAt) < h.retryInterval {
		return nil, nil, true, h.failErr
	}
	return nil, nil, false, nil
}

// fetch tries the local store, then the remote source.
func (h *IndexHandle) fetch(ctx context.Context) (*domain.IndexSnapshot, error) {
	var errs []error
	if h.local != nil {
		snap, err := h.local.Load(ctx)
		if err == nil {
			logger.Info("Loaded index from %s (%d records)", h.local.Path(), len(snap.Records))
			return snap, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Local index unreadable: %v", err)
		}
		errs = append(errs, fmt.Errorf("local: %w", err))
	}

	if h.remote != nil {
		snap, err := h.remote.Fetch(ctx)
		if err == nil {
			logger.Info("Loaded index from %s (%d records)", h.remote.Location(), len(snap.Records))
			return snap, nil
		}
		logger.Warn("Remote index %s unavailable: %v", h.remote.Location(), err)
		errs = append(errs, fmt.Errorf("remote: %w", err))
	}

	if len(errs) == 0 {
		return nil, domain.ErrIndexNotAvailable
	}
	return nil, fmt.Errorf("%w: %w", domain.ErrIndexNotAvailable, errors.Join(errs...))
}

// set installs snapshot and clears any remembered failure.
// Caller must hold mu, or own h exclusively.
func (h *IndexHandle) set(snapshot *domain.IndexSnapshot) {
	h.snapshot = snapshot
	h.searcher = index.NewSearcher(snapshot)
	h.failErr = nil
}
