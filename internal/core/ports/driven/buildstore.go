package driven

import (
	"context"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

// BuildRunStore persists the history of index builds.
type BuildRunStore interface {
	// RecordRun creates or updates a run based on ID.
	RecordRun(ctx context.Context, run *domain.BuildRun) error

	// ListRuns returns recent runs, most recent first.
	ListRuns(ctx context.Context, limit int) ([]domain.BuildRun, error)
}
