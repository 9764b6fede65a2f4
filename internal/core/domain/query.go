package domain

import "time"

// UnknownLabel groups records whose counterpart or department is empty.
const UnknownLabel = "Unknown"

// Outcome distinguishes a legitimately empty jurisdiction from a failed one.
type Outcome string

// Jurisdiction outcomes.
const (
	OutcomeFound    Outcome = "found"
	OutcomeNotFound Outcome = "not_found"
	OutcomeErrored  Outcome = "errored"
)

// ResolutionPath records how a jurisdiction was answered.
type ResolutionPath string

// Resolution paths.
const (
	PathIndex ResolutionPath = "index"
	PathLive  ResolutionPath = "live"
)

// CountEntry is one row of an aggregate.
type CountEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Aggregates summarises matched records.
// Each list is sorted by count descending, ties in first-seen order.
type Aggregates struct {
	ByCounterpart []CountEntry `json:"by_counterpart"`
	ByDepartment  []CountEntry `json:"by_department"`
	ByYear        []CountEntry `json:"by_year"`
}

// CountMap flattens an aggregate into a map.
func CountMap(entries []CountEntry) map[string]int {
	m := make(map[string]int, len(entries))
	for _, e := range entries {
		m[e.Key] = e.Count
	}
	return m
}

// TaggedRecord is a matched record with the query term that matched it.
type TaggedRecord struct {
	NormalizedRecord

	// MatchedTerm is the originating sub-query term.
	MatchedTerm string `json:"matched_term,omitempty"`
}

// JurisdictionResult is the outcome of resolving a query against one jurisdiction.
type JurisdictionResult struct {
	// Jurisdiction identifies the register.
	Jurisdiction string `json:"jurisdiction"`

	// Outcome is found, not_found or errored.
	Outcome Outcome `json:"outcome"`

	// Reason explains an errored outcome.
	Reason string `json:"reason,omitempty"`

	// Path is index or live.
	Path ResolutionPath `json:"path,omitempty"`

	// Records are the matched records in corpus order.
	Records []TaggedRecord `json:"records"`

	// MeetingsCount is len(Records).
	MeetingsCount int `json:"meetings_count"`

	// PerTermTag maps each sub-query term to the records it matched.
	PerTermTag map[string][]NormalizedRecord `json:"per_term_tag"`

	// Aggregates summarises Records.
	Aggregates Aggregates `json:"aggregates"`

	// CoverageNote describes the period searched.
	CoverageNote string `json:"coverage_note,omitempty"`

	// IndexCreatedAt is the snapshot build time for index answers.
	IndexCreatedAt *time.Time `json:"index_created_at,omitempty"`

	// DateRange is the min-max year of matched records, e.g. "2021-2024".
	DateRange string `json:"date_range,omitempty"`
}

// QueryResult is owned by the caller of the resolver and never shared.
type QueryResult struct {
	// Query is the original query text.
	Query string `json:"query"`

	// Terms are the expanded sub-query terms, in query order.
	Terms []string `json:"terms"`

	// MatchedRecords is the union across jurisdictions.
	MatchedRecords []TaggedRecord `json:"matched_records"`

	// MeetingsCount is len(MatchedRecords).
	MeetingsCount int `json:"meetings_count"`

	// PerTermTag maps each term to the records it matched across jurisdictions.
	PerTermTag map[string][]NormalizedRecord `json:"per_term_tag"`

	// Aggregates summarises MatchedRecords.
	Aggregates Aggregates `json:"aggregates"`

	// Jurisdictions holds one result per requested jurisdiction, in request order.
	Jurisdictions []JurisdictionResult `json:"jurisdictions"`

	// IndexAvailable reports whether a snapshot was loaded.
	IndexAvailable bool `json:"index_available"`
}

// Jurisdiction returns the result for one jurisdiction.
func (q *QueryResult) Jurisdiction(id string) (*JurisdictionResult, bool) {
	for i := range q.Jurisdictions {
		if q.Jurisdictions[i].Jurisdiction == id {
			return &q.Jurisdictions[i], true
		}
	}
	return nil, false
}
