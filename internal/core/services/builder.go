package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
	"github.com/custodia-labs/telemachus/internal/core/ports/driving"
	"github.com/custodia-labs/telemachus/internal/index"
	"github.com/custodia-labs/telemachus/internal/logger"
)

// Ensure IndexBuilder implements the interface.
var _ driving.IndexBuilder = (*IndexBuilder)(nil)

// BuilderConfig holds the default build scope.
type BuilderConfig struct {
	Jurisdictions   []string
	MaxPublications int
	Concurrency     int
}

// IndexBuilder runs the offline build: discover, fetch, normalise,
// deduplicate, index and persist.
type IndexBuilder struct {
	registry    driving.AdapterRegistry
	normalisers driven.NormaliserRegistry
	pipeline    driven.RecordPipeline
	store       driven.SnapshotStore
	runs        driven.BuildRunStore
	cfg         BuilderConfig
	now         func() time.Time
}

// NewIndexBuilder creates a builder. runs is optional.
func NewIndexBuilder(
	registry driving.AdapterRegistry,
	normalisers driven.NormaliserRegistry,
	pipeline driven.RecordPipeline,
	store driven.SnapshotStore,
	runs driven.BuildRunStore,
	cfg BuilderConfig,
) *IndexBuilder {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &IndexBuilder{
		registry:    registry,
		normalisers: normalisers,
		pipeline:    pipeline,
		store:       store,
		runs:        runs,
		cfg:         cfg,
		now:         time.Now,
	}
}

// History returns recent build runs.
func (b *IndexBuilder) History(ctx context.Context, limit int) ([]domain.BuildRun, error) {
	if b.runs == nil {
		return nil, nil
	}
	return b.runs.ListRuns(ctx, limit)
}

// Build produces and persists a new snapshot.
//
// A document that fails to download or parse is skipped and counted. A
// jurisdiction whose discovery fails is left out of the snapshot and
// recorded in its metadata, so queries for it fall back to live search.
// The build fails, leaving the previous snapshot in place, only when
// discovery fails for every jurisdiction.
func (b *IndexBuilder) Build(ctx context.Context, opts domain.BuildOptions) (*domain.IndexSnapshot, error) {
	jurisdictions := uniqueIDs(opts.Jurisdictions)
	if len(jurisdictions) == 0 {
		jurisdictions = uniqueIDs(b.cfg.Jurisdictions)
	}
	if len(jurisdictions) == 0 {
		return nil, fmt.Errorf("build index: %w: no jurisdictions", domain.ErrInvalidInput)
	}
	maxPubs := b.cfg.MaxPublications
	if opts.MaxPublications > 0 {
		maxPubs = opts.MaxPublications
	}

	run := &domain.BuildRun{
		ID:            uuid.NewString(),
		StartedAt:     b.now(),
		Jurisdictions: jurisdictions,
	}
	b.recordRun(ctx, run)

	snap, err := b.build(ctx, run.ID, jurisdictions, maxPubs)
	run.EndedAt = b.now()
	if err != nil {
		run.Error = err.Error()
		b.recordRun(context.WithoutCancel(ctx), run)
		return nil, err
	}

	run.Success = true
	run.Error = skippedSummary(snap.Metadata.Skipped)
	run.RecordCount = snap.Metadata.RecordCount
	run.SnapshotPath = b.store.Path()
	b.recordRun(ctx, run)

	logger.Info("Index build %s finished: %d records in %s", run.ID, run.RecordCount, run.EndedAt.Sub(run.StartedAt).Round(time.Second))
	return snap, nil
}

func (b *IndexBuilder) recordRun(ctx context.Context, run *domain.BuildRun) {
	if b.runs == nil {
		return
	}
	if err := b.runs.RecordRun(ctx, run); err != nil {
		logger.Warn("Failed to record build run %s: %v", run.ID, err)
	}
}

// plannedDoc is one unique document with the normaliser that reads it.
type plannedDoc struct {
	ref        domain.RawDocumentRef
	adapter    driven.SourceAdapter
	normaliser driven.RowNormaliser
}

func (b *IndexBuilder) build(ctx context.Context, buildID string, jurisdictions []string, maxPubs int) (*domain.IndexSnapshot, error) {
	stages := domain.StageCounts{PublicationsDiscovered: make(map[string]int)}

	logger.Section("Discovery")
	docs, built, skipped, err := b.discover(ctx, jurisdictions, maxPubs, &stages)
	if err != nil {
		return nil, err
	}

	logger.Section("Fetch")
	rows, err := b.fetch(ctx, docs, &stages)
	if err != nil {
		return nil, err
	}

	logger.Section("Normalise")
	var records []domain.NormalizedRecord
	for i, doc := range docs {
		for _, row := range rows[i] {
			stages.RowsRead++
			rec, ok := doc.normaliser.Normalise(row, doc.ref)
			if !ok {
				stages.RowsDropped++
				continue
			}
			records = append(records, rec)
		}
	}
	stages.RecordsBeforeDedupe = len(records)

	if b.pipeline != nil {
		records, err = b.pipeline.Process(ctx, records)
		if err != nil {
			return nil, fmt.Errorf("process records: %w", err)
		}
	}
	if records == nil {
		records = []domain.NormalizedRecord{}
	}
	stages.RecordsAfterDedupe = len(records)
	logger.Info("Records: %d read, %d dropped, %d before dedupe, %d after",
		stages.RowsRead, stages.RowsDropped, stages.RecordsBeforeDedupe, stages.RecordsAfterDedupe)

	sourceCounts := make(map[string]int, len(built))
	for _, id := range built {
		sourceCounts[id] = 0
	}
	for _, r := range records {
		sourceCounts[r.Jurisdiction]++
	}

	snap := &domain.IndexSnapshot{
		Metadata: domain.SnapshotMetadata{
			BuildID:      buildID,
			CreatedAt:    b.now().UTC(),
			RecordCount:  len(records),
			CoverageNote: domain.CoverageNote,
			SourceCounts: sourceCounts,
			Skipped:      skipped,
			StageCounts:  stages,
		},
		Records:       records,
		InvertedIndex: index.Build(records),
	}

	logger.Section("Persist")
	if err := b.store.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return snap, nil
}

// discover lists documents for every jurisdiction and removes duplicate URLs,
// keeping the first occurrence in jurisdiction then discovery order. It
// returns the jurisdictions that were discovered and the reasons the others
// were skipped. Unknown jurisdictions fail immediately.
func (b *IndexBuilder) discover(
	ctx context.Context,
	jurisdictions []string,
	maxPubs int,
	stages *domain.StageCounts,
) ([]plannedDoc, []string, map[string]string, error) {
	var docs []plannedDoc
	var built []string
	var errs []error
	skipped := make(map[string]string)
	seen := make(map[string]bool)

	for _, id := range jurisdictions {
		adapter, err := b.registry.Get(id)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %w", domain.ErrDiscoveryFailed, err)
		}
		normaliser, ok := b.normalisers.Get(id)
		if !ok {
			return nil, nil, nil, fmt.Errorf("%w: %w: no normaliser for %q",
				domain.ErrDiscoveryFailed, domain.ErrUnknownJurisdiction, id)
		}

		refs, err := adapter.Discover(ctx, maxPubs)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, nil, ctxErr
			}
			logger.Warn("%s: discovery failed, leaving it to live search: %v", id, err)
			errs = append(errs, fmt.Errorf("discover %s: %w", id, err))
			skipped[id] = err.Error()
			continue
		}
		logger.Info("%s: %d documents discovered", id, len(refs))
		built = append(built, id)

		for _, ref := range refs {
			stages.PublicationsDiscovered[string(ref.DocumentKind)]++
			if seen[ref.DocumentURL] {
				continue
			}
			seen[ref.DocumentURL] = true
			docs = append(docs, plannedDoc{ref: ref, adapter: adapter, normaliser: normaliser})
		}
	}

	if len(built) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: %w", domain.ErrDiscoveryFailed, errors.Join(errs...))
	}
	if len(skipped) == 0 {
		skipped = nil
	}
	stages.DocumentsResolved = len(docs)
	return docs, built, skipped, nil
}

// skippedSummary describes skipped jurisdictions for the build history.
func skippedSummary(skipped map[string]string) string {
	if len(skipped) == 0 {
		return ""
	}
	ids := make([]string, 0, len(skipped))
	for id := range skipped {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id + ": " + skipped[id]
	}
	return "skipped " + strings.Join(parts, "; ")
}

// fetch downloads documents in parallel. rows[i] belongs to docs[i], so the
// merge order does not depend on completion order.
func (b *IndexBuilder) fetch(ctx context.Context, docs []plannedDoc, stages *domain.StageCounts) ([][]domain.RawRow, error) {
	rows := make([][]domain.RawRow, len(docs))
	failed := make([]bool, len(docs))

	var g errgroup.Group
	g.SetLimit(b.cfg.Concurrency)
	for i := range docs {
		g.Go(func() error {
			if ctx.Err() != nil {
				failed[i] = true
				return nil
			}
			parsed, err := docs[i].adapter.FetchAndParse(ctx, docs[i].ref)
			if err != nil {
				failed[i] = true
				logger.Debug("Skipping %s: %v", docs[i].ref.DocumentURL, err)
				return nil
			}
			rows[i] = parsed
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i := range docs {
		if failed[i] {
			stages.DocumentsFailed++
		} else {
			stages.DocumentsFetched++
		}
	}
	if stages.DocumentsFailed > 0 {
		logger.Warn("%d of %d documents could not be fetched", stages.DocumentsFailed, len(docs))
	}
	return rows, nil
}
