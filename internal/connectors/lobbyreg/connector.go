package lobbyreg

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/telemachus/internal/connectors/httpclient"
	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
	"github.com/custodia-labs/telemachus/internal/normalisers/tabular"
)

// Ensure Connector implements the interface.
var _ driven.SourceAdapter = (*Connector)(nil)

const (
	// DefaultListURL is the register's alphabetical list.
	DefaultListURL = "https://lobbyreg.justiz.gv.at/edikte/ir/iredi18.nsf/liste!OpenForm&subf=a"

	register = "Lobbying- und Interessenvertretungs-Register"
)

// Row keys understood by the at alias table.
const (
	colName       = "name"
	colRegister   = "register number"
	colCategory   = "category"
	colLobbyists  = "lobbyists"
	colLastUpdate = "last update"
)

// categories describes the register sections.
var categories = map[string]string{
	"A1": "Lobbying company",
	"A2": "Client information",
	"B":  "Company with in-house lobbyists",
	"C":  "Self-governing body",
	"D":  "Interest group",
}

// Connector scrapes the Austrian register list.
type Connector struct {
	listURL    string
	client     *httpclient.Client
	cache      driven.DocumentCache
	normaliser driven.RowNormaliser
}

// New creates an Austrian register connector. An empty listURL uses the
// public list.
func New(listURL string, client *httpclient.Client, cache driven.DocumentCache, normaliser driven.RowNormaliser) *Connector {
	if listURL == "" {
		listURL = DefaultListURL
	}
	return &Connector{listURL: listURL, client: client, cache: cache, normaliser: normaliser}
}

// Info describes the Austrian register.
func (c *Connector) Info() domain.JurisdictionInfo {
	return domain.JurisdictionInfo{
		ID:                 domain.JurisdictionAustria,
		Name:               "Austria",
		Register:           register,
		CoverageNote:       "2013-present",
		SupportsLiveSearch: true,
	}
}

// Discover is not supported.
func (c *Connector) Discover(context.Context, int) ([]domain.RawDocumentRef, error) {
	return nil, fmt.Errorf("%w: %s has no bulk discovery", domain.ErrNotSupported, domain.JurisdictionAustria)
}

// FetchAndParse downloads the list page and returns every entry.
func (c *Connector) FetchAndParse(ctx context.Context, ref domain.RawDocumentRef) ([]domain.RawRow, error) {
	data, err := c.client.DownloadCached(ctx, c.cache, domain.JurisdictionAustria, ref.DocumentURL)
	if err != nil {
		return nil, err
	}
	return ParseList(tabular.Decode(data))
}

// LiveSearch returns the entries whose name contains the term.
// The window does not apply.
func (c *Connector) LiveSearch(ctx context.Context, term string, _ time.Duration) ([]domain.NormalizedRecord, error) {
	if c.normaliser == nil {
		return nil, fmt.Errorf("%w: no normaliser for %s", domain.ErrNotSupported, domain.JurisdictionAustria)
	}

	ref := domain.RawDocumentRef{
		Jurisdiction:    domain.JurisdictionAustria,
		DepartmentLabel: register,
		DocumentURL:     c.listURL,
		DocumentKind:    domain.DocumentKindRegister,
	}
	rows, err := c.FetchAndParse(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch register list: %w", err)
	}

	needle := strings.ToLower(term)
	var out []domain.NormalizedRecord
	for _, row := range rows {
		if !strings.Contains(strings.ToLower(row[colName]), needle) {
			continue
		}
		if rec, ok := c.normaliser.Normalise(row, ref); ok {
			if row[colRegister] != "" {
				rec.SourceDocument = row[colRegister]
			}
			out = append(out, rec)
		}
	}
	return out, nil
}

// ParseList extracts register entries from the list page.
func ParseList(page []byte) ([]domain.RawRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse register list: %w", err)
	}

	var rows []domain.RawRow
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("td")
		// The list prefixes each row with a scripted counter cell.
		if cells.Length() > 0 && strings.Contains(cells.First().Text(), "count()") {
			cells = cells.Slice(1, cells.Length())
		}
		if cells.Length() < 5 {
			return
		}

		name := clean(cells.Eq(0).Text())
		if name == "" {
			return
		}
		category := clean(cells.Eq(2).Text())
		if desc, ok := categories[category]; ok {
			category = fmt.Sprintf("%s (%s)", desc, category)
		}

		rows = append(rows, domain.RawRow{
			colName:       name,
			colRegister:   clean(cells.Eq(1).Find("a").First().Text()),
			colCategory:   category,
			colLobbyists:  lines(cells.Eq(3)),
			colLastUpdate: clean(cells.Eq(4).Text()),
		})
	})
	return rows, nil
}

// lines joins the text segments of a cell separated by line breaks.
func lines(s *goquery.Selection) string {
	var parts []string
	s.Contents().Each(func(_ int, n *goquery.Selection) {
		if t := clean(n.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, ", ")
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
