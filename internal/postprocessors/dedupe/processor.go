// Package dedupe collapses records describing the same event.
//
// Two records are the same event when they share counterpart, date and
// subject. The key is a heuristic: differently spelled names are kept apart
// and distinct same-day meetings between the same parties are merged.
package dedupe

import (
	"context"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

// Filter is a streaming deduplicator. The set of seen keys is its only state.
// A Filter is not safe for concurrent use.
type Filter struct {
	seen map[domain.DedupeKey]struct{}
}

// NewFilter creates an empty streaming filter.
func NewFilter() *Filter {
	return &Filter{seen: make(map[domain.DedupeKey]struct{})}
}

// Keep reports whether r is the first record seen with its key.
func (f *Filter) Keep(r domain.NormalizedRecord) bool {
	k := r.Key()
	if _, ok := f.seen[k]; ok {
		return false
	}
	f.seen[k] = struct{}{}
	return true
}

// Seen returns the number of distinct keys seen.
func (f *Filter) Seen() int {
	return len(f.seen)
}

// Processor deduplicates a batch, keeping the first record per key in input order.
type Processor struct{}

// New creates a dedupe processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "dedupe"
}

// Process returns the records with later duplicates removed.
func (p *Processor) Process(_ context.Context, records []domain.NormalizedRecord) ([]domain.NormalizedRecord, error) {
	f := NewFilter()
	out := make([]domain.NormalizedRecord, 0, len(records))
	for _, r := range records {
		if f.Keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}
