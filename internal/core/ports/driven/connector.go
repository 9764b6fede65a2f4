package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

// SourceAdapter is the capability set of one jurisdiction's register.
// Each connector (govuk, lobbyfacts, bundestag, ...) implements this interface.
type SourceAdapter interface {
	// Info describes the jurisdiction and which operations are supported.
	Info() domain.JurisdictionInfo

	// Discover enumerates downloadable documents for an index build.
	// maxResults caps the number of publications inspected per document kind.
	// Returns domain.ErrNotSupported if the register cannot be bulk-discovered.
	Discover(ctx context.Context, maxResults int) ([]domain.RawDocumentRef, error)

	// FetchAndParse downloads one document and returns its raw rows.
	// Rows carry the upstream column names untouched.
	FetchAndParse(ctx context.Context, ref domain.RawDocumentRef) ([]domain.RawRow, error)

	// LiveSearch queries the upstream register for records matching term,
	// bounded to publications newer than now minus window.
	// Returns domain.ErrNotSupported if the register cannot be searched.
	LiveSearch(ctx context.Context, term string, window time.Duration) ([]domain.NormalizedRecord, error)
}
