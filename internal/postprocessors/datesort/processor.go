// Package datesort orders records by date.
package datesort

import (
	"cmp"
	"context"
	"slices"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

// Processor stably sorts records by parsed date. Records with unparsable
// dates sort after all dated records regardless of direction.
type Processor struct {
	ascending bool
}

// Option configures the processor.
type Option func(*Processor)

// Ascending orders oldest first.
func Ascending() Option {
	return func(p *Processor) {
		p.ascending = true
	}
}

// New creates a date sorting processor. The default order is newest first.
func New(opts ...Option) *Processor {
	p := &Processor{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "datesort"
}

// Process returns a sorted copy of records.
func (p *Processor) Process(_ context.Context, records []domain.NormalizedRecord) ([]domain.NormalizedRecord, error) {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b domain.NormalizedRecord) int {
		ka, kb := domain.DateSortKey(a.Date), domain.DateSortKey(b.Date)
		undatedA, undatedB := ka == domain.UndatedSortKey, kb == domain.UndatedSortKey
		switch {
		case undatedA && undatedB:
			return 0
		case undatedA:
			return 1
		case undatedB:
			return -1
		}
		if p.ascending {
			return cmp.Compare(ka, kb)
		}
		return cmp.Compare(kb, ka)
	})
	return out, nil
}
