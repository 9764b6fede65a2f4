package mcp

import (
	"github.com/custodia-labs/telemachus/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server needs.
type Ports struct {
	// Resolver answers queries.
	Resolver driving.QueryResolver

	// Index exposes the loaded snapshot's metadata.
	Index driving.IndexLoader

	// Registry lists the supported jurisdictions.
	Registry driving.AdapterRegistry
}

// Validate ensures all required ports are set.
// Index and Registry are optional; their resources report empty content.
func (p *Ports) Validate() error {
	if p.Resolver == nil {
		return ErrMissingResolver
	}
	return nil
}
