package driving

import (
	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
)

// AdapterRegistry exposes the registered source adapters.
type AdapterRegistry interface {
	// Get returns the adapter for a jurisdiction.
	// Returns domain.ErrUnknownJurisdiction if none is registered.
	Get(id string) (driven.SourceAdapter, error)

	// Jurisdictions lists registered jurisdictions in registration order.
	Jurisdictions() []domain.JurisdictionInfo
}
