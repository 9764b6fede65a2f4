package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

const defaultRecordLimit = 50

// ResolveInput is the input schema for the resolve tool.
type ResolveInput struct {
	Query         string   `json:"query" jsonschema:"organisation or person name, optionally with AND, OR, NOT and quoted phrases"`
	Jurisdictions []string `json:"jurisdictions,omitempty" jsonschema:"jurisdiction ids such as uk, ie, eu, de (default: all)"`
	Limit         int      `json:"limit,omitempty" jsonschema:"maximum number of records to return (default 50)"`
}

// ResolveOutput is the output schema for the resolve tool.
type ResolveOutput struct {
	Query          string               `json:"query"`
	Terms          []string             `json:"terms"`
	MeetingsCount  int                  `json:"meetings_count"`
	IndexAvailable bool                 `json:"index_available"`
	Aggregates     domain.Aggregates    `json:"aggregates"`
	Jurisdictions  []JurisdictionOutput `json:"jurisdictions"`
	Records        []RecordOutput       `json:"records"`
	Truncated      bool                 `json:"truncated,omitempty"`
	Error          string               `json:"error,omitempty"`
}

// JurisdictionOutput summarises one jurisdiction's result.
type JurisdictionOutput struct {
	ID            string `json:"id"`
	Outcome       string `json:"outcome"`
	Reason        string `json:"reason,omitempty"`
	Path          string `json:"path,omitempty"`
	MeetingsCount int    `json:"meetings_count"`
	CoverageNote  string `json:"coverage_note,omitempty"`
	DateRange     string `json:"date_range,omitempty"`
}

// RecordOutput is a single matched record.
type RecordOutput struct {
	Subject      string `json:"subject"`
	Counterpart  string `json:"counterpart,omitempty"`
	Date         string `json:"date,omitempty"`
	Topic        string `json:"topic,omitempty"`
	Department   string `json:"department,omitempty"`
	Jurisdiction string `json:"jurisdiction"`
	Source       string `json:"source,omitempty"`
	MatchedTerm  string `json:"matched_term,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resolve",
		Description: "Find disclosed lobbying meetings and register entries for a name across jurisdictions",
	}, s.handleResolve)
}

// handleResolve handles the resolve tool invocation.
func (s *Server) handleResolve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResolveInput,
) (*mcp.CallToolResult, ResolveOutput, error) {
	jurisdictions := input.Jurisdictions
	if len(jurisdictions) == 0 && s.ports.Registry != nil {
		for _, info := range s.ports.Registry.Jurisdictions() {
			jurisdictions = append(jurisdictions, info.ID)
		}
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultRecordLimit
	}

	result, err := s.ports.Resolver.Resolve(ctx, input.Query, jurisdictions)
	if result == nil {
		return nil, ResolveOutput{}, fmt.Errorf("resolving %q: %w", input.Query, err)
	}

	output := toOutput(result, limit)
	if err != nil {
		output.Error = err.Error()
	}
	return nil, output, nil
}

func toOutput(result *domain.QueryResult, limit int) ResolveOutput {
	output := ResolveOutput{
		Query:          result.Query,
		Terms:          result.Terms,
		MeetingsCount:  result.MeetingsCount,
		IndexAvailable: result.IndexAvailable,
		Aggregates:     result.Aggregates,
		Jurisdictions:  make([]JurisdictionOutput, len(result.Jurisdictions)),
		Records:        []RecordOutput{},
	}

	for i, jr := range result.Jurisdictions {
		output.Jurisdictions[i] = JurisdictionOutput{
			ID:            jr.Jurisdiction,
			Outcome:       string(jr.Outcome),
			Reason:        jr.Reason,
			Path:          string(jr.Path),
			MeetingsCount: jr.MeetingsCount,
			CoverageNote:  jr.CoverageNote,
			DateRange:     jr.DateRange,
		}
	}

	records := result.MatchedRecords
	if len(records) > limit {
		records = records[:limit]
		output.Truncated = true
	}
	for _, r := range records {
		output.Records = append(output.Records, RecordOutput{
			Subject:      r.SubjectName,
			Counterpart:  r.CounterpartName,
			Date:         r.Date,
			Topic:        r.Topic,
			Department:   r.Department,
			Jurisdiction: r.Jurisdiction,
			Source:       r.SourceDocument,
			MatchedTerm:  r.MatchedTerm,
		})
	}
	return output
}
