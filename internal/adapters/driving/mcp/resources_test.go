package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

func TestExtractJurisdictionID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "valid jurisdiction URI", uri: "telemachus://jurisdictions/uk", expected: "uk"},
		{name: "invalid prefix", uri: "file://jurisdictions/uk", expected: ""},
		{name: "nested path", uri: "telemachus://jurisdictions/uk/records", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJurisdictionID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func testSnapshot() *domain.IndexSnapshot {
	return &domain.IndexSnapshot{
		Metadata: domain.SnapshotMetadata{
			BuildID:      "build-123",
			CreatedAt:    time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC),
			RecordCount:  42,
			CoverageNote: domain.CoverageNote,
			SourceCounts: map[string]int{"uk": 40, "ie": 2},
		},
	}
}

func TestServer_handleMetadataResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil index returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Resolver: &mockResolver{}})
		require.NoError(t, err)

		_, err = server.handleMetadataResource(ctx, makeReadResourceRequest("telemachus://index/metadata"))
		require.Error(t, err)
	})

	t.Run("returns snapshot metadata", func(t *testing.T) {
		server, err := NewServer(&Ports{Resolver: &mockResolver{}, Index: &mockIndexLoader{snapshot: testSnapshot()}})
		require.NoError(t, err)

		result, err := server.handleMetadataResource(ctx, makeReadResourceRequest("telemachus://index/metadata"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "build-123")
		assert.Contains(t, result.Contents[0].Text, `"record_count":42`)
	})

	t.Run("load failure is an error", func(t *testing.T) {
		server, err := NewServer(&Ports{Resolver: &mockResolver{}, Index: &mockIndexLoader{err: domain.ErrIndexNotAvailable}})
		require.NoError(t, err)

		_, err = server.handleMetadataResource(ctx, makeReadResourceRequest("telemachus://index/metadata"))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrIndexNotAvailable)
	})
}

func TestServer_handleJurisdictionsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil registry returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Resolver: &mockResolver{}})
		require.NoError(t, err)

		result, err := server.handleJurisdictionsResource(ctx, makeReadResourceRequest("telemachus://jurisdictions"))
		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("lists registered jurisdictions", func(t *testing.T) {
		server, err := NewServer(&Ports{Resolver: &mockResolver{}, Registry: newMockRegistry("uk", "de")})
		require.NoError(t, err)

		result, err := server.handleJurisdictionsResource(ctx, makeReadResourceRequest("telemachus://jurisdictions"))
		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"id":"uk"`)
		assert.Contains(t, result.Contents[0].Text, `"id":"de"`)
	})
}

func TestServer_handleJurisdictionResource(t *testing.T) {
	ctx := context.Background()
	ports := &Ports{
		Resolver: &mockResolver{},
		Index:    &mockIndexLoader{snapshot: testSnapshot()},
		Registry: newMockRegistry("uk", "de"),
	}
	server, err := NewServer(ports)
	require.NoError(t, err)

	t.Run("indexed jurisdiction", func(t *testing.T) {
		result, err := server.handleJurisdictionResource(ctx, makeReadResourceRequest("telemachus://jurisdictions/uk"))
		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"indexed":true`)
		assert.Contains(t, result.Contents[0].Text, `"record_count":40`)
	})

	t.Run("live-only jurisdiction", func(t *testing.T) {
		result, err := server.handleJurisdictionResource(ctx, makeReadResourceRequest("telemachus://jurisdictions/de"))
		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"indexed":false`)
	})

	t.Run("unknown jurisdiction", func(t *testing.T) {
		_, err := server.handleJurisdictionResource(ctx, makeReadResourceRequest("telemachus://jurisdictions/fr"))
		require.Error(t, err)
	})
}
