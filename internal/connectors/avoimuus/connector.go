package avoimuus

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oarkflow/json"

	"github.com/custodia-labs/telemachus/internal/connectors/httpclient"
	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
	"github.com/custodia-labs/telemachus/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.SourceAdapter = (*Connector)(nil)

const (
	// DefaultAPIURL is the public register API.
	DefaultAPIURL = "https://public.api.avoimuusrekisteri.fi"

	// DefaultMaxEntities bounds how many matches are expanded with activities.
	DefaultMaxEntities = 10

	registrationsPath = "/open-data-register-notification"
	activitiesPath    = "/open-data-activity-notification/company/"

	register = "Avoimuusrekisteri"
)

// Row keys understood by the fi alias table.
const (
	colCompanyName      = "companyName"
	colRegistrationDate = "registrationDate"
	colMainIndustry     = "mainIndustry"
	colTopic            = "topic"
)

// Connector searches the Finnish register.
type Connector struct {
	apiURL      string
	maxEntities int
	client      *httpclient.Client
	cache       driven.DocumentCache
	normaliser  driven.RowNormaliser
}

// New creates a Finnish register connector.
func New(apiURL string, client *httpclient.Client, cache driven.DocumentCache, normaliser driven.RowNormaliser) *Connector {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Connector{
		apiURL:      strings.TrimSuffix(apiURL, "/"),
		maxEntities: DefaultMaxEntities,
		client:      client,
		cache:       cache,
		normaliser:  normaliser,
	}
}

// Info describes the Finnish register.
func (c *Connector) Info() domain.JurisdictionInfo {
	return domain.JurisdictionInfo{
		ID:                 domain.JurisdictionFinland,
		Name:               "Finland",
		Register:           register,
		CoverageNote:       "2024-present",
		SupportsLiveSearch: true,
	}
}

// Discover is not supported.
func (c *Connector) Discover(context.Context, int) ([]domain.RawDocumentRef, error) {
	return nil, fmt.Errorf("%w: %s has no bulk discovery", domain.ErrNotSupported, domain.JurisdictionFinland)
}

// FetchAndParse returns the activity topics of one company.
// ref.DocumentURL is the company's activity notification URL.
func (c *Connector) FetchAndParse(ctx context.Context, ref domain.RawDocumentRef) ([]domain.RawRow, error) {
	var acts []activity
	if err := c.client.SearchJSON(ctx, ref.DocumentURL, nil, &acts); err != nil {
		return nil, fmt.Errorf("fetch activities: %w", err)
	}

	var rows []domain.RawRow
	seen := make(map[string]bool)
	for _, a := range acts {
		for _, t := range a.Topics {
			text := t.text()
			if text == "" || seen[text] {
				continue
			}
			seen[text] = true
			rows = append(rows, domain.RawRow{colTopic: text})
		}
	}
	return rows, nil
}

// LiveSearch matches registrations locally and expands them with their
// activity topics. The window does not apply.
func (c *Connector) LiveSearch(ctx context.Context, term string, _ time.Duration) ([]domain.NormalizedRecord, error) {
	if c.normaliser == nil {
		return nil, fmt.Errorf("%w: no normaliser for %s", domain.ErrNotSupported, domain.JurisdictionFinland)
	}

	regs, err := c.registrations(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(term)
	var out []domain.NormalizedRecord
	expanded := 0
	for _, reg := range regs {
		if !reg.matches(needle) {
			continue
		}

		id := idString(reg.CompanyID)
		ref := domain.RawDocumentRef{
			Jurisdiction:    domain.JurisdictionFinland,
			DepartmentLabel: register,
			DocumentURL:     c.apiURL + activitiesPath + url.PathEscape(id),
			DocumentKind:    domain.DocumentKindRegister,
		}

		var topics []domain.RawRow
		if id != "" && expanded < c.maxEntities {
			expanded++
			topics, err = c.FetchAndParse(ctx, ref)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				logger.Debug("avoimuus: activities for %s: %v", id, err)
			}
		}
		if len(topics) == 0 {
			topics = []domain.RawRow{{}}
		}

		for _, t := range topics {
			row := domain.RawRow{
				colCompanyName:      reg.CompanyName,
				colRegistrationDate: reg.RegistrationDate,
				colMainIndustry:     reg.MainIndustry,
				colTopic:            t[colTopic],
			}
			if rec, ok := c.normaliser.Normalise(row, ref); ok {
				rec.SourceDocument = id
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

func (c *Connector) registrations(ctx context.Context) ([]registration, error) {
	data, err := c.client.SearchCached(ctx, c.cache, domain.JurisdictionFinland, "registrations",
		c.apiURL+registrationsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch registrations: %w", err)
	}
	var regs []registration
	if err := json.Unmarshal(data, &regs); err != nil {
		return nil, fmt.Errorf("decode registrations: %w", err)
	}
	return regs, nil
}

type registration struct {
	CompanyName              string `json:"companyName"`
	CompanyID                any    `json:"companyId"`
	RegistrationDate         string `json:"registrationDate"`
	MainIndustry             string `json:"mainIndustry"`
	SupplementaryCompanyNames []struct {
		Title string `json:"title"`
	} `json:"supplementaryCompanyNames"`
}

func (r registration) matches(needle string) bool {
	if strings.Contains(strings.ToLower(r.CompanyName), needle) {
		return true
	}
	for _, s := range r.SupplementaryCompanyNames {
		if strings.Contains(strings.ToLower(s.Title), needle) {
			return true
		}
	}
	return false
}

type activity struct {
	Topics []topic `json:"topics"`
}

type topic struct {
	ContactTopicOther   any `json:"contactTopicOther"`
	ContactTopicProject any `json:"contactTopicProject"`
}

// text prefers the free-text topic over the project reference. Either may
// be a non-string in the API's output, which is ignored.
func (t topic) text() string {
	for _, v := range []any{t.ContactTopicOther, t.ContactTopicProject} {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}
