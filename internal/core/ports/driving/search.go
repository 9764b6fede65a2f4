package driving

import (
	"context"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

// QueryResolver answers name queries across jurisdictions.
type QueryResolver interface {
	// Resolve evaluates a (possibly boolean) query against each jurisdiction.
	// A failing jurisdiction is reported in its result and never aborts the query.
	// Returns domain.ErrInvalidInput for an empty query or jurisdiction set.
	Resolve(ctx context.Context, query string, jurisdictions []string) (*domain.QueryResult, error)
}
