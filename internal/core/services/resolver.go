package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/oarkflow/json"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/telemachus/internal/boolean"
	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
	"github.com/custodia-labs/telemachus/internal/core/ports/driving"
	"github.com/custodia-labs/telemachus/internal/index"
	"github.com/custodia-labs/telemachus/internal/logger"
)

// Ensure QueryResolver implements the interface.
var _ driving.QueryResolver = (*QueryResolver)(nil)

// ResolverConfig tunes the resolver.
type ResolverConfig struct {
	// Live controls the live fallback path.
	Live domain.LiveSettings

	// Concurrency bounds parallel jurisdiction resolution.
	Concurrency int
}

// QueryResolver answers queries from the index where it covers a
// jurisdiction and from the jurisdiction's live adapter otherwise.
type QueryResolver struct {
	registry driving.AdapterRegistry
	handle   *IndexHandle
	cache    driven.ResultCache
	pipeline driven.RecordPipeline
	cfg      ResolverConfig
}

// NewQueryResolver creates a resolver. cache and pipeline are optional:
// without a cache live searches are never reused, and without a pipeline
// live records are used as the adapter returns them.
func NewQueryResolver(
	registry driving.AdapterRegistry,
	handle *IndexHandle,
	cache driven.ResultCache,
	pipeline driven.RecordPipeline,
	cfg ResolverConfig,
) *QueryResolver {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if handle == nil {
		handle = NewIndexHandle(nil, nil)
	}
	return &QueryResolver{
		registry: registry,
		handle:   handle,
		cache:    cache,
		pipeline: pipeline,
		cfg:      cfg,
	}
}

// Resolve evaluates query against each jurisdiction.
//
// When no index is loaded and every jurisdiction errored, the result is
// returned together with an error wrapping domain.ErrIndexNotAvailable.
func (r *QueryResolver) Resolve(ctx context.Context, query string, jurisdictions []string) (*domain.QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("resolve: %w: empty query", domain.ErrInvalidInput)
	}
	ids := uniqueIDs(jurisdictions)
	if len(ids) == 0 {
		return nil, fmt.Errorf("resolve: %w: no jurisdictions", domain.ErrInvalidInput)
	}
	adapters := make([]driven.SourceAdapter, len(ids))
	for i, id := range ids {
		a, err := r.registry.Get(id)
		if err != nil {
			return nil, fmt.Errorf("resolve: %w", err)
		}
		adapters[i] = a
	}

	expr, err := boolean.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	terms := boolean.Expand(expr)

	snap, searcher, loadErr := r.handle.Searcher(ctx)
	indexAvailable := loadErr == nil
	if !indexAvailable {
		logger.Debug("Resolving %q without index: %v", query, loadErr)
	}

	results := make([]domain.JurisdictionResult, len(ids))
	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)
	for i := range ids {
		g.Go(func() error {
			results[i] = r.resolveOne(ctx, adapters[i], terms, snap, searcher)
			return nil
		})
	}
	_ = g.Wait()

	out := merge(query, terms, results)
	out.IndexAvailable = indexAvailable

	if !indexAvailable {
		var reasons []error
		for _, jr := range results {
			if jr.Outcome != domain.OutcomeErrored {
				return out, nil
			}
			reasons = append(reasons, fmt.Errorf("%s: %s", jr.Jurisdiction, jr.Reason))
		}
		return out, fmt.Errorf("%w: %w", domain.ErrIndexNotAvailable, errors.Join(reasons...))
	}
	return out, nil
}

func (r *QueryResolver) resolveOne(
	ctx context.Context,
	adapter driven.SourceAdapter,
	terms []boolean.Term,
	snap *domain.IndexSnapshot,
	searcher *index.Searcher,
) domain.JurisdictionResult {
	info := adapter.Info()

	if snap.Covers(info.ID) {
		jr := resolveIndexed(info.ID, terms, snap, searcher)
		logger.Debug("%s: %d records from index", info.ID, jr.MeetingsCount)
		return jr
	}

	if !r.cfg.Live.Enabled {
		return erroredResult(info.ID, domain.PathLive, domain.ErrLiveSearchDisabled)
	}

	jr, err := r.resolveLive(ctx, adapter, terms)
	if err != nil {
		logger.Warn("%s: live search failed: %v", info.ID, err)
		return erroredResult(info.ID, domain.PathLive, err)
	}
	if jr.CoverageNote == "" {
		jr.CoverageNote = fmt.Sprintf("last %d months", r.cfg.Live.MonthsBack)
	}
	logger.Debug("%s: %d records from live search", info.ID, jr.MeetingsCount)
	return jr
}

// resolveIndexed matches each term against the snapshot. Records keep
// corpus order and carry the first term, in query order, that matched them.
func resolveIndexed(
	jurisdiction string,
	terms []boolean.Term,
	snap *domain.IndexSnapshot,
	searcher *index.Searcher,
) domain.JurisdictionResult {
	perTerm := make(map[string][]domain.NormalizedRecord, len(terms))
	tagOf := make(map[int]string)
	for _, term := range terms {
		matched := []domain.NormalizedRecord{}
		for _, pos := range searcher.Search(term.Expr) {
			rec := snap.Records[pos]
			if rec.Jurisdiction != jurisdiction {
				continue
			}
			matched = append(matched, rec)
			if _, tagged := tagOf[pos]; !tagged {
				tagOf[pos] = term.Tag
			}
		}
		perTerm[term.Tag] = matched
	}

	positions := make([]int, 0, len(tagOf))
	for pos := range tagOf {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	records := make([]domain.TaggedRecord, 0, len(positions))
	for _, pos := range positions {
		records = append(records, domain.TaggedRecord{NormalizedRecord: snap.Records[pos], MatchedTerm: tagOf[pos]})
	}

	created := snap.Metadata.CreatedAt
	jr := foundOrNot(jurisdiction, domain.PathIndex, records, perTerm)
	jr.CoverageNote = snap.Metadata.CoverageNote
	jr.IndexCreatedAt = &created
	return jr
}

// resolveLive runs one live search per term. A term that fails is logged and
// skipped; the jurisdiction errors only when every term failed.
func (r *QueryResolver) resolveLive(
	ctx context.Context,
	adapter driven.SourceAdapter,
	terms []boolean.Term,
) (domain.JurisdictionResult, error) {
	info := adapter.Info()
	perTerm := make(map[string][]domain.NormalizedRecord, len(terms))
	seen := make(map[domain.DedupeKey]bool)
	var records []domain.TaggedRecord
	var errs []error

	for _, term := range terms {
		matched, err := r.liveTerm(ctx, adapter, term.Expr)
		if err != nil {
			if ctx.Err() != nil {
				return domain.JurisdictionResult{}, ctx.Err()
			}
			logger.Debug("%s: term %q failed: %v", info.ID, term.Tag, err)
			errs = append(errs, err)
			continue
		}
		perTerm[term.Tag] = matched
		for _, rec := range matched {
			if seen[rec.Key()] {
				continue
			}
			seen[rec.Key()] = true
			records = append(records, domain.TaggedRecord{NormalizedRecord: rec, MatchedTerm: term.Tag})
		}
	}
	if len(errs) == len(terms) {
		return domain.JurisdictionResult{}, errors.Join(errs...)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return domain.DateSortKey(records[i].Date) > domain.DateSortKey(records[j].Date)
	})

	jr := foundOrNot(info.ID, domain.PathLive, records, perTerm)
	jr.CoverageNote = info.CoverageNote
	return jr, nil
}

// liveTerm fetches records for one expression. A literal is sent upstream
// and the adapter's own matching is trusted. Any other expression sends its
// first positive literal and filters the result by subject name.
func (r *QueryResolver) liveTerm(ctx context.Context, adapter driven.SourceAdapter, e boolean.Expr) ([]domain.NormalizedRecord, error) {
	if lit, ok := boolean.IsLiteral(e); ok {
		return r.fetchLive(ctx, adapter, lit.Text)
	}

	lit, ok := boolean.FirstPositiveLiteral(e)
	if !ok {
		return []domain.NormalizedRecord{}, nil
	}
	fetched, err := r.fetchLive(ctx, adapter, lit.Text)
	if err != nil {
		return nil, err
	}
	matched := []domain.NormalizedRecord{}
	for _, rec := range fetched {
		if e.Match(rec.SubjectName) {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

// fetchLive calls the adapter through the result cache and the pipeline.
func (r *QueryResolver) fetchLive(ctx context.Context, adapter driven.SourceAdapter, term string) ([]domain.NormalizedRecord, error) {
	id := adapter.Info().ID
	window := r.cfg.Live.Window()
	key := LiveCacheKey(id, term, window)

	if r.cache != nil {
		cached, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("%s: result cache read failed: %v", id, err)
		} else if ok {
			logger.Debug("%s: %q served from result cache", id, term)
			return cached, nil
		}
	}

	records, err := adapter.LiveSearch(ctx, term, window)
	if err != nil {
		return nil, err
	}
	if r.pipeline != nil {
		records, err = r.pipeline.Process(ctx, records)
		if err != nil {
			return nil, fmt.Errorf("process live records: %w", err)
		}
	}
	if records == nil {
		records = []domain.NormalizedRecord{}
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, key, records, r.cfg.Live.CacheTTL); err != nil {
			logger.Warn("%s: result cache write failed: %v", id, err)
		}
	}
	return records, nil
}

// LiveCacheKey hashes the canonical JSON form of a live request.
// Terms differing only in case or surrounding space share a key.
func LiveCacheKey(jurisdiction, term string, window time.Duration) string {
	payload, _ := json.Marshal(struct {
		Jurisdiction string `json:"jurisdiction"`
		Term         string `json:"term"`
		Window       int64  `json:"window_seconds"`
	}{
		Jurisdiction: jurisdiction,
		Term:         strings.ToLower(strings.TrimSpace(term)),
		Window:       int64(window / time.Second),
	})
	return strconv.FormatUint(xxhash.Sum64(payload), 16)
}

func foundOrNot(
	jurisdiction string,
	path domain.ResolutionPath,
	records []domain.TaggedRecord,
	perTerm map[string][]domain.NormalizedRecord,
) domain.JurisdictionResult {
	if records == nil {
		records = []domain.TaggedRecord{}
	}
	outcome := domain.OutcomeFound
	if len(records) == 0 {
		outcome = domain.OutcomeNotFound
	}
	return domain.JurisdictionResult{
		Jurisdiction:  jurisdiction,
		Outcome:       outcome,
		Path:          path,
		Records:       records,
		MeetingsCount: len(records),
		PerTermTag:    perTerm,
		Aggregates:    Aggregate(records),
		DateRange:     DateRange(records),
	}
}

func erroredResult(jurisdiction string, path domain.ResolutionPath, err error) domain.JurisdictionResult {
	return domain.JurisdictionResult{
		Jurisdiction: jurisdiction,
		Outcome:      domain.OutcomeErrored,
		Reason:       err.Error(),
		Path:         path,
		Records:      []domain.TaggedRecord{},
		PerTermTag:   map[string][]domain.NormalizedRecord{},
		Aggregates:   Aggregate(nil),
	}
}

// merge builds the cross-jurisdiction union in request order.
func merge(query string, terms []boolean.Term, results []domain.JurisdictionResult) *domain.QueryResult {
	out := &domain.QueryResult{
		Query:          query,
		Terms:          make([]string, 0, len(terms)),
		MatchedRecords: []domain.TaggedRecord{},
		PerTermTag:     make(map[string][]domain.NormalizedRecord, len(terms)),
		Jurisdictions:  results,
	}
	for _, t := range terms {
		out.Terms = append(out.Terms, t.Tag)
		out.PerTermTag[t.Tag] = []domain.NormalizedRecord{}
	}
	for _, jr := range results {
		out.MatchedRecords = append(out.MatchedRecords, jr.Records...)
		for tag, recs := range jr.PerTermTag {
			out.PerTermTag[tag] = append(out.PerTermTag[tag], recs...)
		}
	}
	out.MeetingsCount = len(out.MatchedRecords)
	out.Aggregates = Aggregate(out.MatchedRecords)
	return out
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
