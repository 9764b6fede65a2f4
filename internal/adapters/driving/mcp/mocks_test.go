package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
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

// mockIndexLoader is a mock implementation of driving.IndexLoader.
type mockIndexLoader struct {
	snapshot *domain.IndexSnapshot
	err      error
}

func (m *mockIndexLoader) Load(_ context.Context) (*domain.IndexSnapshot, error) {
	return m.snapshot, m.err
}

func (m *mockIndexLoader) Loaded() (*domain.IndexSnapshot, bool) {
	return m.snapshot, m.snapshot != nil
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

// mockRegistry is a mock implementation of driving.AdapterRegistry.
type mockRegistry struct {
	adapters []*mockAdapter
}

func newMockRegistry(ids ...string) *mockRegistry {
	r := &mockRegistry{}
	for _, id := range ids {
		r.adapters = append(r.adapters, &mockAdapter{info: domain.JurisdictionInfo{ID: id, Name: "Register " + id}})
	}
	return r
}

func (m *mockRegistry) Get(id string) (driven.SourceAdapter, error) {
	for _, a := range m.adapters {
		if a.info.ID == id {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownJurisdiction, id)
}

func (m *mockRegistry) Jurisdictions() []domain.JurisdictionInfo {
	infos := make([]domain.JurisdictionInfo, len(m.adapters))
	for i, a := range m.adapters {
		infos[i] = a.info
	}
	return infos
}
