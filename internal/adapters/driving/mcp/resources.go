package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/oarkflow/json"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Telemachus resources.
	uriScheme = "telemachus://"

	mimeJSON = "application/json"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "index/metadata",
		Name:        "index-metadata",
		Description: "Build metadata of the loaded index snapshot",
		MIMEType:    mimeJSON,
	}, s.handleMetadataResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "jurisdictions",
		Name:        "jurisdictions",
		Description: "Supported jurisdictions and their registers",
		MIMEType:    mimeJSON,
	}, s.handleJurisdictionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "jurisdictions/{id}",
		Name:        "jurisdiction",
		Description: "One jurisdiction, with its record count in the loaded index",
		MIMEType:    mimeJSON,
	}, s.handleJurisdictionResource)
}

// handleMetadataResource returns the snapshot metadata, loading the index if needed.
func (s *Server) handleMetadataResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Index == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	snap, err := s.ports.Index.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading index: %w", err)
	}
	return jsonResult(req.Params.URI, snap.Metadata)
}

// handleJurisdictionsResource lists the registered jurisdictions.
func (s *Server) handleJurisdictionsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	infos := []domain.JurisdictionInfo{}
	if s.ports.Registry != nil {
		infos = append(infos, s.ports.Registry.Jurisdictions()...)
	}
	return jsonResult(req.Params.URI, infos)
}

// handleJurisdictionResource describes one jurisdiction.
func (s *Server) handleJurisdictionResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Registry == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	id := extractJurisdictionID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	adapter, err := s.ports.Registry.Get(id)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	type jurisdictionInfo struct {
		domain.JurisdictionInfo
		Indexed     bool `json:"indexed"`
		RecordCount int  `json:"record_count"`
	}
	info := jurisdictionInfo{JurisdictionInfo: adapter.Info()}
	if s.ports.Index != nil {
		if snap, ok := s.ports.Index.Loaded(); ok {
			info.RecordCount, info.Indexed = snap.Metadata.SourceCounts[id]
		}
	}
	return jsonResult(req.Params.URI, info)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(data),
		}},
	}, nil
}

// extractJurisdictionID extracts the id from a URI like telemachus://jurisdictions/{id}.
func extractJurisdictionID(uri string) string {
	const prefix = uriScheme + "jurisdictions/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
