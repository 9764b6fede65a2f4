package catalonia

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/telemachus/internal/connectors/httpclient"
	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.SourceAdapter = (*Connector)(nil)

const (
	// DefaultAPIURL is the register dataset.
	DefaultAPIURL = "https://analisi.transparenciacatalunya.cat/resource/gwpn-de62.json"

	// DefaultLimit caps rows returned by one query.
	DefaultLimit = 100

	register = "Registre de grups d'interès de Catalunya"
)

// entryFields are copied from each dataset row. data_alta is cut to its date.
var entryFields = []string{
	"nom",
	"identificador",
	"data_alta",
	"tipus_grup",
	"categoria_registre",
	"finalitat",
	"ambits_interes",
	"ambits_registre",
}

// Connector queries the Catalan register.
type Connector struct {
	apiURL     string
	limit      int
	client     *httpclient.Client
	normaliser driven.RowNormaliser
}

// New creates a Catalan register connector.
func New(apiURL string, limit int, client *httpclient.Client, normaliser driven.RowNormaliser) *Connector {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Connector{apiURL: apiURL, limit: limit, client: client, normaliser: normaliser}
}

// Info describes the Catalan register.
func (c *Connector) Info() domain.JurisdictionInfo {
	return domain.JurisdictionInfo{
		ID:                 domain.JurisdictionCatalonia,
		Name:               "Catalonia",
		Register:           register,
		CoverageNote:       "2016-present",
		SupportsLiveSearch: true,
	}
}

// Discover is not supported.
func (c *Connector) Discover(context.Context, int) ([]domain.RawDocumentRef, error) {
	return nil, fmt.Errorf("%w: %s has no bulk discovery", domain.ErrNotSupported, domain.JurisdictionCatalonia)
}

// FetchAndParse runs the query encoded in ref.DocumentURL.
func (c *Connector) FetchAndParse(ctx context.Context, ref domain.RawDocumentRef) ([]domain.RawRow, error) {
	var items []map[string]any
	if err := c.client.SearchJSON(ctx, ref.DocumentURL, nil, &items); err != nil {
		return nil, fmt.Errorf("query register: %w", err)
	}

	rows := make([]domain.RawRow, 0, len(items))
	for _, item := range items {
		row := make(domain.RawRow, len(entryFields))
		for _, f := range entryFields {
			row[f] = stringValue(item[f])
		}
		if len(row["data_alta"]) > 10 {
			row["data_alta"] = row["data_alta"][:10]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LiveSearch returns register entries whose name contains the term.
// The window does not apply.
func (c *Connector) LiveSearch(ctx context.Context, term string, _ time.Duration) ([]domain.NormalizedRecord, error) {
	if c.normaliser == nil {
		return nil, fmt.Errorf("%w: no normaliser for %s", domain.ErrNotSupported, domain.JurisdictionCatalonia)
	}

	ref := domain.RawDocumentRef{
		Jurisdiction:    domain.JurisdictionCatalonia,
		DepartmentLabel: register,
		DocumentURL:     c.queryURL(term),
		DocumentKind:    domain.DocumentKindRegister,
	}
	rows, err := c.FetchAndParse(ctx, ref)
	if err != nil {
		return nil, err
	}

	var out []domain.NormalizedRecord
	for _, row := range rows {
		if rec, ok := c.normaliser.Normalise(row, ref); ok {
			rec.SourceDocument = row["identificador"]
			out = append(out, rec)
		}
	}
	return out, nil
}

// queryURL builds the SoQL query for a term.
func (c *Connector) queryURL(term string) string {
	q := url.Values{
		"$where": {fmt.Sprintf("lower(nom) like '%%%s%%'", soqlEscape(strings.ToLower(term)))},
		"$limit": {strconv.Itoa(c.limit)},
	}
	sep := "?"
	if strings.Contains(c.apiURL, "?") {
		sep = "&"
	}
	return c.apiURL + sep + q.Encode()
}

// soqlEscape doubles single quotes inside a SoQL string literal.
func soqlEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func stringValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
