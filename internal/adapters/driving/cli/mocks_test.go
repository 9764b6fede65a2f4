package cli

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/telemachus/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
	"github.com/custodia-labs/telemachus/internal/core/services"
)

// mockResolver is a mock implementation of driving.QueryResolver.
type mockResolver struct {
	result *domain.QueryResult
	err    error

	gotQuery         string
	gotJurisdictions []string
}

func (m *mockResolver) Resolve(_ context.Context, query string, jurisdictions []string) (*domain.QueryResult, error) {
	m.gotQuery = query
	m.gotJurisdictions = jurisdictions
	return m.result, m.err
}

// mockIndexBuilder is a mock implementation of driving.IndexBuilder.
type mockIndexBuilder struct {
	snapshot *domain.IndexSnapshot
	err      error
	runs     []domain.BuildRun

	gotOpts domain.BuildOptions
}

func (m *mockIndexBuilder) Build(_ context.Context, opts domain.BuildOptions) (*domain.IndexSnapshot, error) {
	m.gotOpts = opts
	return m.snapshot, m.err
}

func (m *mockIndexBuilder) History(context.Context, int) ([]domain.BuildRun, error) {
	return m.runs, nil
}

// mockIndexLoader is a mock implementation of driving.IndexLoader.
type mockIndexLoader struct {
	snapshot *domain.IndexSnapshot
	err      error
}

func (m *mockIndexLoader) Load(context.Context) (*domain.IndexSnapshot, error) {
	return m.snapshot, m.err
}

func (m *mockIndexLoader) Loaded() (*domain.IndexSnapshot, bool) {
	return m.snapshot, m.snapshot != nil
}

// mockScheduler is a mock implementation of driving.Scheduler.
type mockScheduler struct {
	mu      sync.Mutex
	started bool
	stopped bool
	ran     []string
	runErr  error
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

func (m *mockScheduler) RunNow(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ran = append(m.ran, taskID)
	return m.runErr
}

// mockPublisher is a mock implementation of driven.SnapshotPublisher.
type mockPublisher struct {
	location  string
	published *domain.IndexSnapshot
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, snap *domain.IndexSnapshot) (string, error) {
	m.published = snap
	return m.location, m.err
}

// mockAdapter is a minimal driven.SourceAdapter.
type mockAdapter struct {
	info domain.JurisdictionInfo
}

func (m *mockAdapter) Info() domain.JurisdictionInfo { return m.info }

func (m *mockAdapter) Discover(context.Context, int) ([]domain.RawDocumentRef, error) {
	return nil, domain.ErrNotSupported
}

func (m *mockAdapter) FetchAndParse(context.Context, domain.RawDocumentRef) ([]domain.RawRow, error) {
	return nil, domain.ErrNotSupported
}

func (m *mockAdapter) LiveSearch(context.Context, string, time.Duration) ([]domain.NormalizedRecord, error) {
	return nil, nil
}

var _ driven.SnapshotPublisher = (*mockPublisher)(nil)

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	resolver  *mockResolver
	builder   *mockIndexBuilder
	loader    *mockIndexLoader
	scheduler *mockScheduler
	store     *memory.SchedulerStore
	settings  *services.SettingsService
	publisher *mockPublisher
	published string
}

func testSnapshot() *domain.IndexSnapshot {
	return &domain.IndexSnapshot{
		Metadata: domain.SnapshotMetadata{
			BuildID:      "build-1",
			CreatedAt:    time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
			RecordCount:  2,
			CoverageNote: domain.CoverageNote,
			SourceCounts: map[string]int{"uk": 2},
			StageCounts: domain.StageCounts{
				PublicationsDiscovered: map[string]int{"ministerial": 3},
				DocumentsResolved:      3,
				DocumentsFetched:       2,
				DocumentsFailed:        1,
				RowsRead:               4,
				RowsDropped:            1,
				RecordsBeforeDedupe:    3,
				RecordsAfterDedupe:     2,
			},
		},
		Records: []domain.NormalizedRecord{
			{SubjectName: "Acme Ltd", CounterpartName: "Minister A", Date: "2024-03-01", Department: "HM Treasury", Jurisdiction: "uk"},
			{SubjectName: "Acme Ltd", CounterpartName: "Minister B", Date: "2023-05-05", Department: "HM Treasury", Jurisdiction: "uk"},
		},
	}
}

func testResult() *domain.QueryResult {
	created := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	records := []domain.TaggedRecord{
		{NormalizedRecord: domain.NormalizedRecord{
			SubjectName: "Acme Ltd", CounterpartName: "Minister A", Date: "2024-03-01",
			Topic: "Rail investment", Department: "HM Treasury", Jurisdiction: "uk",
		}, MatchedTerm: "acme"},
		{NormalizedRecord: domain.NormalizedRecord{
			SubjectName: "Acme Ltd", CounterpartName: "Minister B", Date: "2023-05-05",
			Department: "HM Treasury", Jurisdiction: "uk",
		}, MatchedTerm: "acme"},
	}
	agg := domain.Aggregates{
		ByCounterpart: []domain.CountEntry{{Key: "Minister A", Count: 1}, {Key: "Minister B", Count: 1}},
		ByDepartment:  []domain.CountEntry{{Key: "HM Treasury", Count: 2}},
		ByYear:        []domain.CountEntry{{Key: "2024", Count: 1}, {Key: "2023", Count: 1}},
	}
	return &domain.QueryResult{
		Query:          "acme",
		Terms:          []string{"acme"},
		MatchedRecords: records,
		MeetingsCount:  2,
		Aggregates:     agg,
		IndexAvailable: true,
		Jurisdictions: []domain.JurisdictionResult{
			{
				Jurisdiction: "uk", Outcome: domain.OutcomeFound, Path: domain.PathIndex,
				Records: records, MeetingsCount: 2, Aggregates: agg,
				CoverageNote: domain.CoverageNote, IndexCreatedAt: &created, DateRange: "2023-2024",
			},
			{Jurisdiction: "de", Outcome: domain.OutcomeErrored, Path: domain.PathLive, Reason: "upstream returned 503"},
		},
	}
}

// setupTestServices installs mocks and returns a cleanup function that
// restores an unconfigured command tree.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		resolver:  &mockResolver{result: testResult()},
		builder:   &mockIndexBuilder{snapshot: testSnapshot()},
		loader:    &mockIndexLoader{snapshot: testSnapshot()},
		scheduler: &mockScheduler{},
		store:     memory.NewSchedulerStore(),
		settings:  services.NewSettingsService(memory.NewConfigStore(nil), "/home/test", func(string) string { return "" }),
		publisher: &mockPublisher{location: "s3://bucket/snapshot.json"},
	}

	registry := services.NewAdapterRegistry(
		&mockAdapter{info: domain.JurisdictionInfo{
			ID: "uk", Name: "United Kingdom", Register: "Ministerial transparency returns",
			CoverageNote: "2012-present", SupportsDiscovery: true,
		}},
		&mockAdapter{info: domain.JurisdictionInfo{
			ID: "de", Name: "Germany", Register: "Lobbyregister", CoverageNote: "last 12 months", SupportsLiveSearch: true,
		}},
	)

	SetServices(Services{
		Resolver:       ts.resolver,
		IndexBuilder:   ts.builder,
		IndexLoader:    ts.loader,
		Registry:       registry,
		Settings:       ts.settings,
		Scheduler:      ts.scheduler,
		SchedulerStore: ts.store,
		SnapshotStore:  &memorySnapshotStore{snap: testSnapshot()},
		Publisher: func(location string) (driven.SnapshotPublisher, error) {
			ts.published = location
			return ts.publisher, nil
		},
	})

	return ts, func() {
		SetServices(Services{})
		resetFlags()
	}
}

// resetFlags clears flag variables that persist between Execute calls.
func resetFlags() {
	searchJSON = false
	searchLimit = 20
	searchJurisdictions = nil
	buildJurisdictions = nil
	buildMaxPublications = 0
	jurisdictionsJSON = false
	scheduleHistoryLimit = 10
	versionShort = false
	rootCmd.SetArgs(nil)
}

// memorySnapshotStore is an in-memory driven.SnapshotStore.
type memorySnapshotStore struct {
	snap *domain.IndexSnapshot
}

func (m *memorySnapshotStore) Save(_ context.Context, snap *domain.IndexSnapshot) error {
	m.snap = snap
	return nil
}

func (m *memorySnapshotStore) Load(context.Context) (*domain.IndexSnapshot, error) {
	if m.snap == nil {
		return nil, domain.ErrNotFound
	}
	return m.snap, nil
}

func (m *memorySnapshotStore) Path() string { return "/home/test/.telemachus/data/snapshot.json" }
