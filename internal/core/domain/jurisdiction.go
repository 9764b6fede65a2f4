package domain

// Jurisdiction identifiers.
const (
	JurisdictionUK        = "uk"
	JurisdictionIreland   = "ie"
	JurisdictionEU        = "eu"
	JurisdictionGermany   = "de"
	JurisdictionAustria   = "at"
	JurisdictionCatalonia = "cat"
	JurisdictionFinland   = "fi"
	JurisdictionSlovenia  = "si"
)

// JurisdictionInfo describes one register and what its adapter can do.
type JurisdictionInfo struct {
	// ID is the short identifier used on the command line and in records.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Register names the upstream register.
	Register string `json:"register"`

	// CoverageNote describes the period the register covers.
	CoverageNote string `json:"coverage_note"`

	// SupportsDiscovery indicates the adapter can enumerate documents for an index build.
	SupportsDiscovery bool `json:"supports_discovery"`

	// SupportsLiveSearch indicates the adapter can search its upstream on demand.
	SupportsLiveSearch bool `json:"supports_live_search"`
}
