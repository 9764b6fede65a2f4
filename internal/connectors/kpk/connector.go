package kpk

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
	// DefaultRegisterURL is the public register page.
	DefaultRegisterURL = "https://www.kpk-rs.si/sl/lobiranje-22/register-lobistov"

	register = "Register lobistov (KPK)"

	fieldSeparator = "·"
)

// Row keys understood by the si alias table.
const (
	colName    = "name"
	colCompany = "company"
	colFields  = "fields of interest"
	colEmail   = "email"
)

// Headings that are bold and contain a comma but are not lobbyists.
var skippedHeadings = []string{"lobist", "register", "sankcij", "komisija"}

// Company suffixes that identify an employer line.
var companyMarkers = []string{"D.O.O", "D. O. O.", "S.P.", "D.D."}

// Connector scrapes the Slovenian register page.
type Connector struct {
	registerURL string
	client      *httpclient.Client
	cache       driven.DocumentCache
	normaliser  driven.RowNormaliser
}

// New creates a Slovenian register connector.
func New(registerURL string, client *httpclient.Client, cache driven.DocumentCache, normaliser driven.RowNormaliser) *Connector {
	if registerURL == "" {
		registerURL = DefaultRegisterURL
	}
	return &Connector{registerURL: registerURL, client: client, cache: cache, normaliser: normaliser}
}

// Info describes the Slovenian register.
func (c *Connector) Info() domain.JurisdictionInfo {
	return domain.JurisdictionInfo{
		ID:                 domain.JurisdictionSlovenia,
		Name:               "Slovenia",
		Register:           register,
		CoverageNote:       "2010-present",
		SupportsLiveSearch: true,
	}
}

// Discover is not supported.
func (c *Connector) Discover(context.Context, int) ([]domain.RawDocumentRef, error) {
	return nil, fmt.Errorf("%w: %s has no bulk discovery", domain.ErrNotSupported, domain.JurisdictionSlovenia)
}

// FetchAndParse downloads the register page and returns every lobbyist.
func (c *Connector) FetchAndParse(ctx context.Context, ref domain.RawDocumentRef) ([]domain.RawRow, error) {
	data, err := c.client.DownloadCached(ctx, c.cache, domain.JurisdictionSlovenia, ref.DocumentURL)
	if err != nil {
		return nil, err
	}
	return ParseRegister(tabular.Decode(data))
}

// LiveSearch returns lobbyists whose name, employer or fields of interest
// contain the term. The window does not apply.
func (c *Connector) LiveSearch(ctx context.Context, term string, _ time.Duration) ([]domain.NormalizedRecord, error) {
	if c.normaliser == nil {
		return nil, fmt.Errorf("%w: no normaliser for %s", domain.ErrNotSupported, domain.JurisdictionSlovenia)
	}

	ref := domain.RawDocumentRef{
		Jurisdiction:    domain.JurisdictionSlovenia,
		DepartmentLabel: register,
		DocumentURL:     c.registerURL,
		DocumentKind:    domain.DocumentKindRegister,
	}
	rows, err := c.FetchAndParse(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch register: %w", err)
	}

	needle := strings.ToLower(term)
	var out []domain.NormalizedRecord
	for _, row := range rows {
		if !matches(row, needle) {
			continue
		}
		if rec, ok := c.normaliser.Normalise(row, ref); ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func matches(row domain.RawRow, needle string) bool {
	for _, k := range []string{colName, colCompany, colFields} {
		if strings.Contains(strings.ToLower(row[k]), needle) {
			return true
		}
	}
	return false
}

// ParseRegister extracts lobbyists from the register page. Each entry is a
// bold "Surname, Name" heading followed by a paragraph of fields of interest
// and a contact list. Entries are unique by name.
func ParseRegister(page []byte) ([]domain.RawRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse register: %w", err)
	}

	var rows []domain.RawRow
	seen := make(map[string]bool)
	doc.Find("strong").Each(func(_ int, s *goquery.Selection) {
		name := clean(s.Text())
		if !isLobbyistName(name) || seen[name] {
			return
		}
		seen[name] = true

		entry := s.Closest("div[class*='flex']")
		if entry.Length() == 0 {
			entry = s.Parent()
		}

		var fields []string
		for _, f := range strings.Split(entry.Find("p.m-0").First().Text(), fieldSeparator) {
			if f = clean(f); f != "" {
				fields = append(fields, f)
			}
		}

		row := domain.RawRow{
			colName:   name,
			colFields: strings.Join(fields, "; "),
		}
		entry.Find("ul").First().Find("li").Each(func(_ int, li *goquery.Selection) {
			text := clean(li.Text())
			switch {
			case strings.Contains(text, "@"):
				row[colEmail] = text
			case row[colCompany] == "" && isCompany(text):
				row[colCompany] = text
			}
		})
		rows = append(rows, row)
	})
	return rows, nil
}

func isLobbyistName(name string) bool {
	if !strings.Contains(name, ",") {
		return false
	}
	lower := strings.ToLower(name)
	for _, s := range skippedHeadings {
		if strings.Contains(lower, s) {
			return false
		}
	}
	return true
}

func isCompany(s string) bool {
	upper := strings.ToUpper(s)
	for _, m := range companyMarkers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	return false
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
