package lobbyingie

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
	"github.com/custodia-labs/telemachus/internal/logger"
	"github.com/custodia-labs/telemachus/internal/normalisers/tabular"
)

// Ensure Connector implements the interface.
var _ driven.SourceAdapter = (*Connector)(nil)

// ExportURL is where returns are exported from.
const ExportURL = "https://www.lobbying.ie/app/home/search"

// clientColumn names the client a lobbyist acted for.
const clientColumn = "client"

// Connector reads lobbying.ie CSV exports from a local directory.
type Connector struct {
	dir        string
	normaliser driven.RowNormaliser
}

// New creates a connector over the import directory.
func New(dir string, normaliser driven.RowNormaliser) *Connector {
	return &Connector{dir: dir, normaliser: normaliser}
}

// Dir returns the import directory.
func (c *Connector) Dir() string {
	return c.dir
}

// Info describes the Irish register.
func (c *Connector) Info() domain.JurisdictionInfo {
	return domain.JurisdictionInfo{
		ID:                 domain.JurisdictionIreland,
		Name:               "Ireland",
		Register:           "Register of Lobbying (lobbying.ie)",
		CoverageNote:       "2015-present",
		SupportsDiscovery:  true,
		SupportsLiveSearch: true,
	}
}

// Discover lists the CSV exports in the import directory, sorted by name.
func (c *Connector) Discover(ctx context.Context, maxResults int) ([]domain.RawDocumentRef, error) {
	files, err := c.exports()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no lobbying.ie exports in %s (export CSVs from %s)",
			domain.ErrDiscoveryFailed, c.dir, ExportURL)
	}
	if maxResults > 0 && len(files) > maxResults {
		files = files[:maxResults]
	}

	refs := make([]domain.RawDocumentRef, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		refs = append(refs, domain.RawDocumentRef{
			Jurisdiction: domain.JurisdictionIreland,
			DocumentURL:  f,
			DocumentKind: domain.DocumentKindReturns,
		})
	}
	return refs, nil
}

// FetchAndParse reads one export.
func (c *Connector) FetchAndParse(ctx context.Context, ref domain.RawDocumentRef) ([]domain.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(ref.DocumentURL)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	rows, err := tabular.ReadCSV(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(ref.DocumentURL), err)
	}
	return rows, nil
}

// LiveSearch scans every export for returns whose lobbyist or client
// contains the term. The window does not apply; exports carry no
// publication date.
func (c *Connector) LiveSearch(ctx context.Context, term string, _ time.Duration) ([]domain.NormalizedRecord, error) {
	if c.normaliser == nil {
		return nil, fmt.Errorf("%w: no normaliser for %s", domain.ErrNotSupported, domain.JurisdictionIreland)
	}

	files, err := c.exports()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(term)
	var out []domain.NormalizedRecord
	for _, f := range files {
		ref := domain.RawDocumentRef{
			Jurisdiction: domain.JurisdictionIreland,
			DocumentURL:  f,
			DocumentKind: domain.DocumentKindReturns,
		}
		rows, err := c.FetchAndParse(ctx, ref)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("lobbyingie: skip %s: %v", filepath.Base(f), err)
			continue
		}
		for _, row := range rows {
			rec, ok := c.normaliser.Normalise(row, ref)
			if !ok {
				continue
			}
			if strings.Contains(strings.ToLower(rec.SubjectName), needle) ||
				strings.Contains(strings.ToLower(column(row, clientColumn)), needle) {
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

// exports returns the CSV files in the import directory. A missing
// directory has no exports.
func (c *Connector) exports() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list imports: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !isExport(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(c.dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func isExport(name string) bool {
	return !strings.HasPrefix(name, ".") && strings.EqualFold(filepath.Ext(name), ".csv")
}

func column(row domain.RawRow, name string) string {
	for k, v := range row {
		if strings.EqualFold(strings.TrimSpace(k), name) {
			return v
		}
	}
	return ""
}
