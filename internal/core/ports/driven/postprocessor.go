package driven

import (
	"context"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

// RecordProcessor transforms a batch of normalised records.
// Processors are chained in a pipeline (e.g., dedupe, date sorting).
// Processors never mutate the records they receive.
type RecordProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes records and returns the processed records.
	Process(ctx context.Context, records []domain.NormalizedRecord) ([]domain.NormalizedRecord, error)
}

// RecordPipeline chains multiple RecordProcessors.
type RecordPipeline interface {
	// Process runs the records through all processors in order.
	Process(ctx context.Context, records []domain.NormalizedRecord) ([]domain.NormalizedRecord, error)
}
