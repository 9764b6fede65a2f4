package driven

import "github.com/custodia-labs/telemachus/internal/core/domain"

// RowNormaliser maps raw rows of one jurisdiction onto the canonical record.
type RowNormaliser interface {
	// Jurisdiction returns the jurisdiction this normaliser handles.
	Jurisdiction() string

	// Normalise converts a row. The boolean is false when the row lacks a
	// mandatory field; such rows are dropped, never reported as errors.
	Normalise(row domain.RawRow, ref domain.RawDocumentRef) (domain.NormalizedRecord, bool)
}
