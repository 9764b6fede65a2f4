package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
)

var _ driven.BuildRunStore = (*BuildRunStore)(nil)

// BuildRunStore keeps build runs in a map.
type BuildRunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.BuildRun
}

// NewBuildRunStore creates an empty store.
func NewBuildRunStore() *BuildRunStore {
	return &BuildRunStore{runs: make(map[string]domain.BuildRun)}
}

// RecordRun creates or replaces a run.
func (s *BuildRunStore) RecordRun(_ context.Context, run *domain.BuildRun) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *run
	stored.Jurisdictions = append([]string(nil), run.Jurisdictions...)
	s.runs[run.ID] = stored
	return nil
}

// ListRuns returns up to limit runs, most recent first. A non-positive limit returns all.
func (s *BuildRunStore) ListRuns(_ context.Context, limit int) ([]domain.BuildRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]domain.BuildRun, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
