package lobbyfacts

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/telemachus/internal/connectors/httpclient"
	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
	"github.com/custodia-labs/telemachus/internal/logger"
	"github.com/custodia-labs/telemachus/internal/normalisers/tabular"
)

// Ensure Connector implements the interface.
var _ driven.SourceAdapter = (*Connector)(nil)

const (
	// DefaultRegisterURL is the full register dump (about 100MB).
	DefaultRegisterURL = "https://transparency-register.europa.eu/odplastorganisationxml_en"

	// DefaultMeetingsURL is the LobbyFacts meetings export; %s is the register id.
	DefaultMeetingsURL = "https://www.lobbyfacts.eu/csv_export_meetings/%s"

	// DefaultMaxEntities bounds how many matched organisations are fetched.
	DefaultMaxEntities = 3

	// organisationColumn is added to meetings rows, which carry no organisation.
	organisationColumn = "Organisation"

	commission = "European Commission"
)

// Config holds the endpoints the connector talks to.
type Config struct {
	RegisterURL string
	MeetingsURL string
	MaxEntities int
}

// Connector searches the EU register and LobbyFacts meetings.
type Connector struct {
	cfg        Config
	client     *httpclient.Client
	cache      driven.DocumentCache
	normaliser driven.RowNormaliser
}

// New creates an EU connector. The cache may be nil but the register dump
// is then downloaded on every search.
func New(cfg Config, client *httpclient.Client, cache driven.DocumentCache, normaliser driven.RowNormaliser) *Connector {
	if cfg.RegisterURL == "" {
		cfg.RegisterURL = DefaultRegisterURL
	}
	if cfg.MeetingsURL == "" {
		cfg.MeetingsURL = DefaultMeetingsURL
	}
	if cfg.MaxEntities <= 0 {
		cfg.MaxEntities = DefaultMaxEntities
	}
	return &Connector{cfg: cfg, client: client, cache: cache, normaliser: normaliser}
}

// Info describes the EU register.
func (c *Connector) Info() domain.JurisdictionInfo {
	return domain.JurisdictionInfo{
		ID:                 domain.JurisdictionEU,
		Name:               "European Union",
		Register:           "EU Transparency Register (LobbyFacts Commission meetings)",
		CoverageNote:       domain.CoverageNote,
		SupportsLiveSearch: true,
	}
}

// Discover is not supported; the register is only searched live.
func (c *Connector) Discover(context.Context, int) ([]domain.RawDocumentRef, error) {
	return nil, fmt.Errorf("%w: %s has no bulk discovery", domain.ErrNotSupported, domain.JurisdictionEU)
}

// FetchAndParse downloads one meetings export.
func (c *Connector) FetchAndParse(ctx context.Context, ref domain.RawDocumentRef) ([]domain.RawRow, error) {
	data, err := c.client.DownloadCached(ctx, c.cache, domain.JurisdictionEU, ref.DocumentURL)
	if err != nil {
		return nil, err
	}
	rows, err := tabular.ReadCSV(data)
	if err != nil {
		return nil, fmt.Errorf("parse meetings: %w", err)
	}
	return rows, nil
}

// LiveSearch returns the Commission meetings of the registered
// organisations matching the term. The window does not apply.
func (c *Connector) LiveSearch(ctx context.Context, term string, _ time.Duration) ([]domain.NormalizedRecord, error) {
	if c.normaliser == nil {
		return nil, fmt.Errorf("%w: no normaliser for %s", domain.ErrNotSupported, domain.JurisdictionEU)
	}

	dump, err := c.client.DownloadCached(ctx, c.cache, domain.JurisdictionEU, c.cfg.RegisterURL)
	if err != nil {
		return nil, fmt.Errorf("download register: %w", err)
	}
	reps, err := MatchRegister(dump, term, c.cfg.MaxEntities)
	if err != nil {
		return nil, err
	}
	logger.Debug("lobbyfacts: %d register matches for %q", len(reps), term)

	var out []domain.NormalizedRecord
	for _, rep := range reps {
		ref := domain.RawDocumentRef{
			Jurisdiction:    domain.JurisdictionEU,
			DepartmentLabel: commission,
			DocumentURL:     fmt.Sprintf(c.cfg.MeetingsURL, rep.ID),
			DocumentKind:    domain.DocumentKindMeetings,
		}
		rows, err := c.FetchAndParse(ctx, ref)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("lobbyfacts: meetings for %s: %v", rep.ID, err)
			continue
		}
		for _, row := range rows {
			row[organisationColumn] = rep.Name
			if rec, ok := c.normaliser.Normalise(row, ref); ok {
				out = append(out, rec)
			}
		}
	}
	return out, nil
}
