package mcp

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

func sampleResult() *domain.QueryResult {
	records := []domain.TaggedRecord{
		{NormalizedRecord: domain.NormalizedRecord{SubjectName: "Acme Ltd", CounterpartName: "Chancellor", Date: "2024-03-12", Jurisdiction: "uk", SourceDocument: "hmt.csv"}, MatchedTerm: "acme"},
		{NormalizedRecord: domain.NormalizedRecord{SubjectName: "Acme GmbH", Date: "2023-01-01", Jurisdiction: "de"}, MatchedTerm: "acme"},
	}
	return &domain.QueryResult{
		Query:          "acme",
		Terms:          []string{"acme"},
		MatchedRecords: records,
		MeetingsCount:  2,
		IndexAvailable: true,
		Jurisdictions: []domain.JurisdictionResult{
			{Jurisdiction: "uk", Outcome: domain.OutcomeFound, Path: domain.PathIndex, MeetingsCount: 1, DateRange: "2024"},
			{Jurisdiction: "de", Outcome: domain.OutcomeFound, Path: domain.PathLive, MeetingsCount: 1, CoverageNote: "last 12 months"},
			{Jurisdiction: "at", Outcome: domain.OutcomeErrored, Path: domain.PathLive, Reason: "upstream error"},
		},
	}
}

func TestServer_handleResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns resolved records", func(t *testing.T) {
		resolver := &mockResolver{result: sampleResult()}
		server, err := NewServer(&Ports{Resolver: resolver, Registry: newMockRegistry("uk", "de", "at")})
		require.NoError(t, err)

		_, output, err := server.handleResolve(ctx, nil, ResolveInput{Query: "acme", Jurisdictions: []string{"uk", "de", "at"}})
		require.NoError(t, err)

		assert.Equal(t, "acme", resolver.gotQuery)
		assert.Equal(t, 2, output.MeetingsCount)
		assert.True(t, output.IndexAvailable)
		require.Len(t, output.Records, 2)
		assert.Equal(t, "Acme Ltd", output.Records[0].Subject)
		assert.Equal(t, "hmt.csv", output.Records[0].Source)
		require.Len(t, output.Jurisdictions, 3)
		assert.Equal(t, "errored", output.Jurisdictions[2].Outcome)
		assert.Equal(t, "upstream error", output.Jurisdictions[2].Reason)
		assert.Equal(t, "live", output.Jurisdictions[1].Path)
		assert.False(t, output.Truncated)
	})

	t.Run("defaults to all jurisdictions", func(t *testing.T) {
		resolver := &mockResolver{result: sampleResult()}
		server, err := NewServer(&Ports{Resolver: resolver, Registry: newMockRegistry("uk", "ie", "eu")})
		require.NoError(t, err)

		_, _, err = server.handleResolve(ctx, nil, ResolveInput{Query: "acme"})
		require.NoError(t, err)
		assert.Equal(t, []string{"uk", "ie", "eu"}, resolver.gotJurisdictions)
	})

	t.Run("limit truncates records", func(t *testing.T) {
		server, err := NewServer(&Ports{Resolver: &mockResolver{result: sampleResult()}})
		require.NoError(t, err)

		_, output, err := server.handleResolve(ctx, nil, ResolveInput{Query: "acme", Jurisdictions: []string{"uk"}, Limit: 1})
		require.NoError(t, err)
		assert.Len(t, output.Records, 1)
		assert.True(t, output.Truncated)
		assert.Equal(t, 2, output.MeetingsCount)
	})

	t.Run("partial failure is reported in output", func(t *testing.T) {
		resolver := &mockResolver{
			result: sampleResult(),
			err:    fmt.Errorf("%w: at: upstream error", domain.ErrIndexNotAvailable),
		}
		server, err := NewServer(&Ports{Resolver: resolver})
		require.NoError(t, err)

		_, output, err := server.handleResolve(ctx, nil, ResolveInput{Query: "acme", Jurisdictions: []string{"at"}})
		require.NoError(t, err)
		assert.Contains(t, output.Error, "index not available")
	})

	t.Run("returns error without result", func(t *testing.T) {
		resolver := &mockResolver{err: domain.ErrInvalidInput}
		server, err := NewServer(&Ports{Resolver: resolver})
		require.NoError(t, err)

		_, _, err = server.handleResolve(ctx, nil, ResolveInput{Query: ""})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
