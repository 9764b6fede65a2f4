package domain

import "time"

// BuildOptions narrows one index build.
type BuildOptions struct {
	// Jurisdictions overrides the configured build set when non-empty.
	Jurisdictions []string

	// MaxPublications overrides the configured discovery cap when positive.
	MaxPublications int
}

// BuildRun is the history entry for one index build.
type BuildRun struct {
	ID            string
	StartedAt     time.Time
	EndedAt       time.Time
	Success       bool
	Error         string
	RecordCount   int
	SnapshotPath  string
	Jurisdictions []string
}
