package bundestag

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
	"github.com/custodia-labs/telemachus/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.SourceAdapter = (*Connector)(nil)

const (
	// DefaultSearchURL is the register's JSON search.
	DefaultSearchURL = "https://www.lobbyregister.bundestag.de/sucheDetailJson"

	// DefaultDetailURL is an entry's JSON detail; register number then entry id.
	DefaultDetailURL = "https://www.lobbyregister.bundestag.de/sucheJson/%s/%s"

	// DefaultMaxEntities bounds how many search hits are expanded.
	DefaultMaxEntities = 3

	register = "Lobbyregister Deutscher Bundestag"
)

// Row keys understood by the de alias table.
const (
	colName             = "name"
	colLeadingMinistry  = "leading ministry"
	colLastUpdate       = "last update"
	colFirstPublication = "first publication"
	colProject          = "regulatory project"
	colFieldsOfInterest = "fields of interest"
)

// Config holds the endpoints the connector talks to.
type Config struct {
	SearchURL   string
	DetailURL   string
	MaxEntities int
}

// Connector searches the Bundestag Lobbyregister.
type Connector struct {
	cfg        Config
	client     *httpclient.Client
	normaliser driven.RowNormaliser
}

// New creates a Lobbyregister connector.
func New(cfg Config, client *httpclient.Client, normaliser driven.RowNormaliser) *Connector {
	if cfg.SearchURL == "" {
		cfg.SearchURL = DefaultSearchURL
	}
	if cfg.DetailURL == "" {
		cfg.DetailURL = DefaultDetailURL
	}
	if cfg.MaxEntities <= 0 {
		cfg.MaxEntities = DefaultMaxEntities
	}
	return &Connector{cfg: cfg, client: client, normaliser: normaliser}
}

// Info describes the German register.
func (c *Connector) Info() domain.JurisdictionInfo {
	return domain.JurisdictionInfo{
		ID:                 domain.JurisdictionGermany,
		Name:               "Germany",
		Register:           register,
		CoverageNote:       "2022-present",
		SupportsLiveSearch: true,
	}
}

// Discover is not supported.
func (c *Connector) Discover(context.Context, int) ([]domain.RawDocumentRef, error) {
	return nil, fmt.Errorf("%w: %s has no bulk discovery", domain.ErrNotSupported, domain.JurisdictionGermany)
}

// FetchAndParse expands one register entry. ref.DocumentURL is the entry's
// detail URL.
func (c *Connector) FetchAndParse(ctx context.Context, ref domain.RawDocumentRef) ([]domain.RawRow, error) {
	var d detail
	if err := c.client.SearchJSON(ctx, ref.DocumentURL, nil, &d); err != nil {
		return nil, fmt.Errorf("fetch register entry: %w", err)
	}
	return d.rows(), nil
}

// LiveSearch runs the register search and expands the top hits.
// The window does not apply.
func (c *Connector) LiveSearch(ctx context.Context, term string, _ time.Duration) ([]domain.NormalizedRecord, error) {
	if c.normaliser == nil {
		return nil, fmt.Errorf("%w: no normaliser for %s", domain.ErrNotSupported, domain.JurisdictionGermany)
	}

	var resp searchResponse
	q := url.Values{"q": {term}, "sort": {"RELEVANCE_DESC"}}
	if err := c.client.SearchJSON(ctx, c.cfg.SearchURL, q, &resp); err != nil {
		return nil, fmt.Errorf("search register: %w", err)
	}

	hits := resp.Results
	if len(hits) > c.cfg.MaxEntities {
		hits = hits[:c.cfg.MaxEntities]
	}

	var out []domain.NormalizedRecord
	for _, hit := range hits {
		entryID := idString(hit.RegisterEntryDetails.RegisterEntryID)
		if hit.RegisterNumber == "" || entryID == "" {
			continue
		}
		ref := domain.RawDocumentRef{
			Jurisdiction:    domain.JurisdictionGermany,
			DepartmentLabel: register,
			DocumentURL:     fmt.Sprintf(c.cfg.DetailURL, url.PathEscape(hit.RegisterNumber), url.PathEscape(entryID)),
			DocumentKind:    domain.DocumentKindRegister,
		}
		rows, err := c.FetchAndParse(ctx, ref)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("bundestag: entry %s: %v", hit.RegisterNumber, err)
			continue
		}
		for _, row := range rows {
			if rec, ok := c.normaliser.Normalise(row, ref); ok {
				rec.SourceDocument = hit.RegisterNumber
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

type searchResponse struct {
	Results []struct {
		RegisterNumber   string `json:"registerNumber"`
		LobbyistIdentity struct {
			Name string `json:"name"`
		} `json:"lobbyistIdentity"`
		RegisterEntryDetails struct {
			RegisterEntryID any `json:"registerEntryId"`
		} `json:"registerEntryDetails"`
	} `json:"results"`
}

type localized struct {
	DE string `json:"de"`
	EN string `json:"en"`
}

type detail struct {
	LobbyistIdentity struct {
		Name string `json:"name"`
	} `json:"lobbyistIdentity"`
	ActivitiesAndInterests struct {
		FieldsOfInterest []localized `json:"fieldsOfInterest"`
	} `json:"activitiesAndInterests"`
	RegulatoryProjects struct {
		RegulatoryProjects []struct {
			Title          string `json:"title"`
			PrintedMatters []struct {
				LeadingMinistries []struct {
					ShortTitle string `json:"shortTitle"`
				} `json:"leadingMinistries"`
			} `json:"printedMatters"`
		} `json:"regulatoryProjects"`
	} `json:"regulatoryProjects"`
	AccountDetails struct {
		FirstPublicationDate string `json:"firstPublicationDate"`
		LastUpdateDate       string `json:"lastUpdateDate"`
	} `json:"accountDetails"`
}

// rows returns one row per regulatory project, or a single row for an
// entry without projects.
func (d detail) rows() []domain.RawRow {
	var interests []string
	for _, f := range d.ActivitiesAndInterests.FieldsOfInterest {
		if f.DE != "" {
			interests = append(interests, f.DE)
		} else if f.EN != "" {
			interests = append(interests, f.EN)
		}
	}

	base := func() domain.RawRow {
		return domain.RawRow{
			colName:             d.LobbyistIdentity.Name,
			colLastUpdate:       d.AccountDetails.LastUpdateDate,
			colFirstPublication: d.AccountDetails.FirstPublicationDate,
			colFieldsOfInterest: strings.Join(interests, "; "),
		}
	}

	projects := d.RegulatoryProjects.RegulatoryProjects
	if len(projects) == 0 {
		return []domain.RawRow{base()}
	}

	rows := make([]domain.RawRow, 0, len(projects))
	for _, p := range projects {
		row := base()
		row[colProject] = p.Title
		for _, pm := range p.PrintedMatters {
			if len(pm.LeadingMinistries) > 0 && pm.LeadingMinistries[0].ShortTitle != "" {
				row[colLeadingMinistry] = pm.LeadingMinistries[0].ShortTitle
				break
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// idString renders a JSON id that may be a string or a number.
func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(id, 10)
	case int:
		return strconv.Itoa(id)
	default:
		return ""
	}
}
