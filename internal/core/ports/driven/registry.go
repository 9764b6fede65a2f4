package driven

// NormaliserRegistry selects the row normaliser for a jurisdiction.
type NormaliserRegistry interface {
	// Get returns the normaliser for the jurisdiction, or false if none is registered.
	Get(jurisdiction string) (RowNormaliser, bool)

	// Register adds a normaliser, replacing any existing one for the same jurisdiction.
	Register(normaliser RowNormaliser)

	// Jurisdictions returns all jurisdictions with a normaliser.
	Jurisdictions() []string
}
