package tabular

import (
	"sync"

	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry holds one normaliser per jurisdiction.
type Registry struct {
	mu          sync.RWMutex
	normalisers map[string]driven.RowNormaliser
	order       []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{normalisers: make(map[string]driven.RowNormaliser)}
}

// NewDefaultRegistry creates a registry holding the built-in alias tables.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, t := range DefaultTables() {
		r.Register(New(t))
	}
	return r
}

// Register adds a normaliser, replacing any for the same jurisdiction.
func (r *Registry) Register(n driven.RowNormaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j := n.Jurisdiction()
	if _, ok := r.normalisers[j]; !ok {
		r.order = append(r.order, j)
	}
	r.normalisers[j] = n
}

// Get returns the normaliser for a jurisdiction.
func (r *Registry) Get(jurisdiction string) (driven.RowNormaliser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.normalisers[jurisdiction]
	return n, ok
}

// Jurisdictions returns registered jurisdictions in registration order.
func (r *Registry) Jurisdictions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
