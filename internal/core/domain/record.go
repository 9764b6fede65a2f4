package domain

// DocumentKind classifies a discovered raw document.
type DocumentKind string

// Known document kinds.
const (
	// DocumentKindMinisterial is a GOV.UK ministerial meetings return.
	DocumentKindMinisterial DocumentKind = "ministerial"

	// DocumentKindSeniorOfficials is a GOV.UK senior officials meetings return.
	DocumentKindSeniorOfficials DocumentKind = "senior_officials"

	// DocumentKindReturns is an exported lobbying returns file.
	DocumentKindReturns DocumentKind = "returns"

	// DocumentKindMeetings is a per-organisation meetings export.
	DocumentKindMeetings DocumentKind = "meetings"

	// DocumentKindRegister is a register entry or register search response.
	DocumentKindRegister DocumentKind = "register"
)

// RawDocumentRef points at one downloadable tabular document.
// It is produced by discovery and never persisted beyond one build cycle.
type RawDocumentRef struct {
	// Jurisdiction is the register the document belongs to.
	Jurisdiction string `json:"jurisdiction"`

	// DepartmentLabel is the publishing body, used to tag every record.
	DepartmentLabel string `json:"department_label"`

	// DocumentURL is the download location (URL or local path).
	DocumentURL string `json:"document_url"`

	// DocumentKind classifies the publication the document came from.
	DocumentKind DocumentKind `json:"document_kind"`
}

// RawRow is one tabular row keyed by the source's own column names.
type RawRow map[string]string

// NormalizedRecord is the atomic unit of the index.
// Records are values and are never mutated after construction.
type NormalizedRecord struct {
	// SubjectName is the organisation or person the disclosure is about.
	SubjectName string `json:"subject_name"`

	// CounterpartName is the other party, e.g. the minister or official met.
	CounterpartName string `json:"counterpart_name"`

	// Date is the event date as published (DD/MM/YYYY, YYYY-MM-DD, ...), or empty.
	Date string `json:"date"`

	// Topic is the stated purpose or subject matter.
	Topic string `json:"topic"`

	// Department is the publishing department or body.
	Department string `json:"department"`

	// Jurisdiction identifies the register.
	Jurisdiction string `json:"jurisdiction"`

	// SourceDocument identifies the document the record was parsed from.
	SourceDocument string `json:"source_document"`
}

// IsEmpty reports whether the record has neither a subject nor a counterpart.
// Empty records are never stored.
func (r NormalizedRecord) IsEmpty() bool {
	return r.SubjectName == "" && r.CounterpartName == ""
}

// DedupeKey identifies a real-world event heuristically.
// Two records with equal keys are treated as the same event.
type DedupeKey struct {
	Counterpart string
	Date        string
	Subject     string
}

// Key returns the record's DedupeKey.
func (r NormalizedRecord) Key() DedupeKey {
	return DedupeKey{
		Counterpart: r.CounterpartName,
		Date:        r.Date,
		Subject:     r.SubjectName,
	}
}
