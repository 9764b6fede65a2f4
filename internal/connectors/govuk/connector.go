package govuk

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/telemachus/internal/connectors/httpclient"
	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
	"github.com/custodia-labs/telemachus/internal/logger"
	"github.com/custodia-labs/telemachus/internal/normalisers/tabular"
)

// Ensure Connector implements the interface.
var _ driven.SourceAdapter = (*Connector)(nil)

const (
	// DefaultSearchURL is the GOV.UK search API.
	DefaultSearchURL = "https://www.gov.uk/api/search.json"

	// DefaultContentURL is the GOV.UK content API; the publication path is appended.
	DefaultContentURL = "https://www.gov.uk/api/content"

	// DefaultBaseURL prefixes relative attachment links.
	DefaultBaseURL = "https://www.gov.uk"

	// DefaultConcurrency bounds parallel content and CSV fetches.
	DefaultConcurrency = 4
)

// Config holds the endpoints the connector talks to.
type Config struct {
	SearchURL   string
	ContentURL  string
	BaseURL     string
	Concurrency int
}

// DefaultConfig returns the production endpoints.
func DefaultConfig() Config {
	return Config{
		SearchURL:   DefaultSearchURL,
		ContentURL:  DefaultContentURL,
		BaseURL:     DefaultBaseURL,
		Concurrency: DefaultConcurrency,
	}
}

// Connector discovers and searches UK meetings returns.
type Connector struct {
	cfg        Config
	client     *httpclient.Client
	cache      driven.DocumentCache
	normaliser driven.RowNormaliser
	now        func() time.Time
}

// New creates a GOV.UK connector. The cache may be nil.
func New(cfg Config, client *httpclient.Client, cache driven.DocumentCache, normaliser driven.RowNormaliser) *Connector {
	def := DefaultConfig()
	if cfg.SearchURL == "" {
		cfg.SearchURL = def.SearchURL
	}
	if cfg.ContentURL == "" {
		cfg.ContentURL = def.ContentURL
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	cfg.ContentURL = strings.TrimSuffix(cfg.ContentURL, "/")
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &Connector{
		cfg:        cfg,
		client:     client,
		cache:      cache,
		normaliser: normaliser,
		now:        time.Now,
	}
}

// Info describes the UK register.
func (c *Connector) Info() domain.JurisdictionInfo {
	return domain.JurisdictionInfo{
		ID:                 domain.JurisdictionUK,
		Name:               "United Kingdom",
		Register:           "GOV.UK ministerial and senior officials meetings returns",
		CoverageNote:       domain.CoverageNote,
		SupportsDiscovery:  true,
		SupportsLiveSearch: true,
	}
}

// Discover enumerates CSV documents for both publication kinds.
// maxResults caps the publications inspected per kind.
func (c *Connector) Discover(ctx context.Context, maxResults int) ([]domain.RawDocumentRef, error) {
	var pubs []publication
	for _, pk := range kinds {
		found, err := c.discoverKind(ctx, pk, maxResults)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, found...)
	}

	refs := c.resolveAll(ctx, pubs)
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: no meetings documents found on GOV.UK", domain.ErrDiscoveryFailed)
	}
	logger.Info("govuk: discovered %d documents from %d publications", len(refs), len(pubs))
	return refs, nil
}

// FetchAndParse downloads one CSV and returns its rows.
func (c *Connector) FetchAndParse(ctx context.Context, ref domain.RawDocumentRef) ([]domain.RawRow, error) {
	data, err := c.client.DownloadCached(ctx, c.cache, domain.JurisdictionUK, ref.DocumentURL)
	if err != nil {
		return nil, err
	}
	rows, err := tabular.ReadCSV(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", ref.DocumentURL, err)
	}
	return rows, nil
}

// LiveSearch scans publications inside the window for the term.
// Publications are visited newest first; failed documents are skipped.
func (c *Connector) LiveSearch(ctx context.Context, term string, window time.Duration) ([]domain.NormalizedRecord, error) {
	if c.normaliser == nil {
		return nil, fmt.Errorf("%w: no normaliser for %s", domain.ErrNotSupported, domain.JurisdictionUK)
	}

	cutoff := c.now().Add(-window)
	var recent []publication
	for _, pk := range kinds {
		found, err := c.discoverKind(ctx, pk, pageSize*5)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			if ts, ok := domain.ParseDate(p.PublicTimestamp); ok && !ts.Before(cutoff) {
				recent = append(recent, p)
			}
		}
	}
	slices.SortStableFunc(recent, func(a, b publication) int {
		return strings.Compare(b.PublicTimestamp, a.PublicTimestamp)
	})
	logger.Debug("govuk: %d publications inside live window", len(recent))

	refs := c.resolveAll(ctx, recent)
	needle := strings.ToLower(term)

	results := make([][]domain.NormalizedRecord, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for i, ref := range refs {
		g.Go(func() error {
			rows, err := c.FetchAndParse(gctx, ref)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Debug("govuk: live skip %s: %v", ref.DocumentURL, err)
				return nil
			}
			for _, row := range rows {
				rec, ok := c.normaliser.Normalise(row, ref)
				if !ok {
					continue
				}
				if strings.Contains(strings.ToLower(rec.SubjectName), needle) ||
					strings.Contains(strings.ToLower(rec.Topic), needle) {
					results[i] = append(results[i], rec)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []domain.NormalizedRecord
	for _, recs := range results {
		out = append(out, recs...)
	}
	return out, nil
}

// resolveAll resolves publications in parallel, preserving publication
// order and dropping duplicate URLs. Failed publications are skipped.
func (c *Connector) resolveAll(ctx context.Context, pubs []publication) []domain.RawDocumentRef {
	resolved := make([][]domain.RawDocumentRef, len(pubs))
	var g errgroup.Group
	g.SetLimit(c.cfg.Concurrency)
	for i, pub := range pubs {
		g.Go(func() error {
			refs, err := c.resolve(ctx, pub)
			if err != nil {
				if ctx.Err() == nil {
					logger.Debug("govuk: skip publication %s: %v", pub.Link, err)
				}
				return nil
			}
			resolved[i] = refs
			return nil
		})
	}
	_ = g.Wait()

	var out []domain.RawDocumentRef
	seen := make(map[string]bool)
	for _, refs := range resolved {
		for _, ref := range refs {
			if seen[ref.DocumentURL] {
				continue
			}
			seen[ref.DocumentURL] = true
			out = append(out, ref)
		}
	}
	return out
}
