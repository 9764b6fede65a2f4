package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
	"github.com/custodia-labs/telemachus/internal/index"
)

// --- Test doubles shared by the service tests ---

// fakeAdapter implements driven.SourceAdapter with canned data.
type fakeAdapter struct {
	info domain.JurisdictionInfo

	refs        []domain.RawDocumentRef
	discoverErr error

	docs     map[string][]domain.RawRow
	fetchErr map[string]error

	liveRecords []domain.NormalizedRecord
	liveErr     error
	termErr     map[string]error

	mu         sync.Mutex
	liveCalls  []string
	fetchCalls []string
}

var _ driven.SourceAdapter = (*fakeAdapter)(nil)

func newFakeAdapter(id string) *fakeAdapter {
	return &fakeAdapter{
		info: domain.JurisdictionInfo{
			ID:                 id,
			Name:               strings.ToUpper(id),
			CoverageNote:       "last 12 months",
			SupportsDiscovery:  true,
			SupportsLiveSearch: true,
		},
		docs:     make(map[string][]domain.RawRow),
		fetchErr: make(map[string]error),
	}
}

func (f *fakeAdapter) Info() domain.JurisdictionInfo { return f.info }

func (f *fakeAdapter) Discover(_ context.Context, maxResults int) ([]domain.RawDocumentRef, error) {
	if f.discoverErr != nil {
		return nil, f.discoverErr
	}
	if maxResults > 0 && len(f.refs) > maxResults {
		return f.refs[:maxResults], nil
	}
	return f.refs, nil
}

func (f *fakeAdapter) FetchAndParse(_ context.Context, ref domain.RawDocumentRef) ([]domain.RawRow, error) {
	f.mu.Lock()
	f.fetchCalls = append(f.fetchCalls, ref.DocumentURL)
	f.mu.Unlock()

	if err := f.fetchErr[ref.DocumentURL]; err != nil {
		return nil, err
	}
	return f.docs[ref.DocumentURL], nil
}

func (f *fakeAdapter) LiveSearch(_ context.Context, term string, _ time.Duration) ([]domain.NormalizedRecord, error) {
	f.mu.Lock()
	f.liveCalls = append(f.liveCalls, term)
	f.mu.Unlock()

	if f.liveErr != nil {
		return nil, f.liveErr
	}
	if err := f.termErr[term]; err != nil {
		return nil, err
	}
	var out []domain.NormalizedRecord
	for _, r := range f.liveRecords {
		if strings.Contains(strings.ToLower(r.SubjectName), strings.ToLower(term)) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAdapter) LiveCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.liveCalls...)
}

func (f *fakeAdapter) addDocument(kind domain.DocumentKind, url string, rows ...domain.RawRow) {
	f.refs = append(f.refs, domain.RawDocumentRef{
		Jurisdiction:    f.info.ID,
		DepartmentLabel: "Department for Testing",
		DocumentURL:     url,
		DocumentKind:    kind,
	})
	f.docs[url] = rows
}

// fakeSnapshotSource implements driven.SnapshotSource.
type fakeSnapshotSource struct {
	snap  *domain.IndexSnapshot
	err   error
	calls int
}

func (s *fakeSnapshotSource) Fetch(context.Context) (*domain.IndexSnapshot, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.snap, nil
}

func (s *fakeSnapshotSource) Location() string { return "https://example.test/snapshot.json" }

// blockingSnapshotSource holds Fetch until release is closed.
type blockingSnapshotSource struct {
	started chan struct{}
	release chan struct{}
	snap    *domain.IndexSnapshot
}

func (s *blockingSnapshotSource) Fetch(ctx context.Context) (*domain.IndexSnapshot, error) {
	close(s.started)
	select {
	case <-s.release:
		return s.snap, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *blockingSnapshotSource) Location() string { return "https://example.test/slow.json" }

// failingStore implements driven.SnapshotStore and fails every call.
type failingStore struct{}

func (failingStore) Save(context.Context, *domain.IndexSnapshot) error {
	return errors.New("disk full")
}

func (failingStore) Load(context.Context) (*domain.IndexSnapshot, error) {
	return nil, errors.New("disk unreadable")
}

func (failingStore) Path() string { return "/nonexistent/snapshot.json" }

// newSnapshot builds an indexed snapshot covering the given jurisdictions.
func newSnapshot(records []domain.NormalizedRecord, jurisdictions ...string) *domain.IndexSnapshot {
	counts := make(map[string]int, len(jurisdictions))
	for _, j := range jurisdictions {
		counts[j] = 0
	}
	for _, r := range records {
		counts[r.Jurisdiction]++
	}
	return &domain.IndexSnapshot{
		Metadata: domain.SnapshotMetadata{
			BuildID:      "test-build",
			CreatedAt:    time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
			RecordCount:  len(records),
			CoverageNote: domain.CoverageNote,
			SourceCounts: counts,
		},
		Records:       records,
		InvertedIndex: index.Build(records),
	}
}

func ukRecord(subject, counterpart, date string) domain.NormalizedRecord {
	return domain.NormalizedRecord{
		SubjectName:     subject,
		CounterpartName: counterpart,
		Date:            date,
		Department:      "HM Treasury",
		Jurisdiction:    domain.JurisdictionUK,
		SourceDocument:  "meetings.csv",
	}
}
