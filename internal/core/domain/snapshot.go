package domain

import (
	"fmt"
	"time"
)

// CoverageNote describes the period an index build covers.
const CoverageNote = "2012-present"

// InvertedIndex maps a lowercase word token to the ascending positions of
// records whose subject name contains that token.
type InvertedIndex map[string][]int

// StageCounts records how many items passed through each build stage.
type StageCounts struct {
	// PublicationsDiscovered counts discovered documents per document kind,
	// before URL deduplication.
	PublicationsDiscovered map[string]int `json:"publications_discovered"`

	// DocumentsResolved is the number of unique documents after URL deduplication.
	DocumentsResolved int `json:"documents_resolved"`

	// DocumentsFetched is the number of documents downloaded and parsed.
	DocumentsFetched int `json:"documents_fetched"`

	// DocumentsFailed is the number of documents skipped after a fetch or parse error.
	DocumentsFailed int `json:"documents_failed"`

	// RowsRead is the number of raw rows handed to the normaliser.
	RowsRead int `json:"rows_read"`

	// RowsDropped is the number of rows that produced no record.
	RowsDropped int `json:"rows_dropped"`

	// RecordsBeforeDedupe is the number of normalised records.
	RecordsBeforeDedupe int `json:"records_before_dedupe"`

	// RecordsAfterDedupe is the number of records in the snapshot.
	RecordsAfterDedupe int `json:"records_after_dedupe"`
}

// SnapshotMetadata describes one index build.
type SnapshotMetadata struct {
	// BuildID uniquely identifies the build run.
	BuildID string `json:"build_id"`

	// CreatedAt is when the build finished.
	CreatedAt time.Time `json:"created_at"`

	// RecordCount is the number of records in the snapshot.
	RecordCount int `json:"record_count"`

	// CoverageNote is a human-readable coverage window.
	CoverageNote string `json:"coverage_note"`

	// SourceCounts maps each built jurisdiction to its record count.
	// A jurisdiction present here is answered from the index.
	SourceCounts map[string]int `json:"source_counts"`

	// Skipped maps a jurisdiction whose discovery failed to the reason.
	// Skipped jurisdictions are absent from SourceCounts.
	Skipped map[string]string `json:"skipped,omitempty"`

	// StageCounts holds per-stage diagnostics.
	StageCounts StageCounts `json:"stage_counts"`
}

// IndexSnapshot is one immutable build output.
// It is shared read-only between concurrent queries once loaded.
type IndexSnapshot struct {
	Metadata      SnapshotMetadata   `json:"metadata"`
	Records       []NormalizedRecord `json:"records"`
	InvertedIndex InvertedIndex      `json:"inverted_index"`
}

// Covers reports whether the snapshot was built for the jurisdiction.
func (s *IndexSnapshot) Covers(jurisdiction string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Metadata.SourceCounts[jurisdiction]
	return ok
}

// Validate checks the structural invariants of a decoded snapshot.
func (s *IndexSnapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil snapshot", ErrSnapshotCorrupt)
	}
	if s.Metadata.RecordCount != len(s.Records) {
		return fmt.Errorf("%w: metadata declares %d records, found %d",
			ErrSnapshotCorrupt, s.Metadata.RecordCount, len(s.Records))
	}
	for token, postings := range s.InvertedIndex {
		for i, pos := range postings {
			if pos < 0 || pos >= len(s.Records) {
				return fmt.Errorf("%w: token %q points at record %d", ErrSnapshotCorrupt, token, pos)
			}
			if i > 0 && pos <= postings[i-1] {
				return fmt.Errorf("%w: postings for token %q are not strictly ascending", ErrSnapshotCorrupt, token)
			}
		}
	}
	return nil
}
