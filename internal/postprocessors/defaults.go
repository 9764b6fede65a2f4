package postprocessors

import (
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
	"github.com/custodia-labs/telemachus/internal/postprocessors/datesort"
	"github.com/custodia-labs/telemachus/internal/postprocessors/dedupe"
)

// Processor names.
const (
	Dedupe   = "dedupe"
	DateSort = "datesort"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register(Dedupe, buildDedupe)
	r.Register(DateSort, buildDateSort)
}

func buildDedupe(_ map[string]any) (driven.RecordProcessor, error) {
	return dedupe.New(), nil
}

// buildDateSort creates a date ordering processor from generic config.
// Supported config keys:
//   - ascending (bool): oldest first (default: newest first)
func buildDateSort(cfg map[string]any) (driven.RecordProcessor, error) {
	var opts []datesort.Option
	if asc, ok := cfg["ascending"].(bool); ok && asc {
		opts = append(opts, datesort.Ascending())
	}
	return datesort.New(opts...), nil
}
