package services

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
	"github.com/custodia-labs/telemachus/internal/core/ports/driving"
)

// Ensure AdapterRegistry implements the interface.
var _ driving.AdapterRegistry = (*AdapterRegistry)(nil)

// AdapterRegistry holds one source adapter per jurisdiction.
type AdapterRegistry struct {
	mu       sync.RWMutex
	adapters map[string]driven.SourceAdapter
	order    []string
}

// NewAdapterRegistry registers the given adapters in order.
func NewAdapterRegistry(adapters ...driven.SourceAdapter) *AdapterRegistry {
	r := &AdapterRegistry{adapters: make(map[string]driven.SourceAdapter)}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds an adapter, replacing any existing one for the same jurisdiction.
func (r *AdapterRegistry) Register(a driven.SourceAdapter) {
	id := a.Info().ID
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[id]; !exists {
		r.order = append(r.order, id)
	}
	r.adapters[id] = a
}

// Get returns the adapter for a jurisdiction.
func (r *AdapterRegistry) Get(id string) (driven.SourceAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownJurisdiction, id)
	}
	return a, nil
}

// Jurisdictions lists registered jurisdictions in registration order.
func (r *AdapterRegistry) Jurisdictions() []domain.JurisdictionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]domain.JurisdictionInfo, 0, len(r.order))
	for _, id := range r.order {
		infos = append(infos, r.adapters[id].Info())
	}
	return infos
}

// IDs lists registered jurisdiction ids in registration order.
func (r *AdapterRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
