package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the question or text to find related passages for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of passages to return (default from settings)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved passage.
type SearchResultOutput struct {
	Source         string   `json:"source"`
	Title          string   `json:"title"`
	Tags           []string `json:"tags,omitempty"`
	ChunkIndex     int      `json:"chunk_index"`
	RelevanceScore float64  `json:"relevance_score"`
	Text           string   `json:"text"`
	Preview        string   `json:"preview"`
	Degraded       bool     `json:"degraded,omitempty"`
}

// ListVersionsInput is the (empty) input of the list_versions tool.
type ListVersionsInput struct{}

// ListVersionsOutput is the output schema for the list_versions tool.
type ListVersionsOutput struct {
	Namespace string        `json:"namespace"`
	Active    string        `json:"active,omitempty"`
	Versions  []VersionInfo `json:"versions"`
}

// PromoteInput is the input schema for the promote_version tool.
type PromoteInput struct {
	Version string `json:"version" jsonschema:"version id or full collection name to make active"`
}

// PromoteOutput is the output schema for the promote_version tool.
type PromoteOutput struct {
	Promoted bool   `json:"promoted"`
	Active   string `json:"active,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Retrieve the passages most similar to a query from the active index version",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_versions",
		Description: "List index versions and show which one is active",
	}, s.handleListVersions)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "promote_version",
		Description: "Atomically make an index version active. Empty versions are refused",
	}, s.handlePromote)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.ports.Search.Search(ctx, input.Query, input.TopK)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		r := &results[i]
		output.Results[i] = SearchResultOutput{
			Source:         r.Metadata.Source,
			Title:          r.Metadata.Title,
			Tags:           r.Metadata.Tags,
			ChunkIndex:     r.Metadata.ChunkIndex,
			RelevanceScore: r.RelevanceScore,
			Text:           r.Text,
			Preview:        r.Preview,
			Degraded:       r.Metadata.Degraded,
		}
	}

	return nil, output, nil
}

// handleListVersions handles the list_versions tool invocation.
func (s *Server) handleListVersions(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListVersionsInput,
) (*mcp.CallToolResult, ListVersionsOutput, error) {
	versions, err := s.ports.Versions.List(ctx)
	if err != nil {
		return nil, ListVersionsOutput{}, fmt.Errorf("listing versions: %w", err)
	}
	return nil, ListVersionsOutput{
		Namespace: s.ports.Versions.Namespace(),
		Active:    s.ports.Versions.Active(),
		Versions:  versionInfos(versions),
	}, nil
}

// handlePromote handles the promote_version tool invocation. A refused
// promotion is reported in the output rather than as a tool error.
func (s *Server) handlePromote(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PromoteInput,
) (*mcp.CallToolResult, PromoteOutput, error) {
	ok, err := s.ports.Versions.Promote(ctx, input.Version)
	switch {
	case err == nil:
		return nil, PromoteOutput{Promoted: ok, Active: s.ports.Versions.Active()}, nil
	case errors.Is(err, domain.ErrEmptyCollectionRejected),
		errors.Is(err, domain.ErrCollectionNotFound),
		errors.Is(err, domain.ErrInvalidInput):
		return nil, PromoteOutput{Active: s.ports.Versions.Active(), Reason: err.Error()}, nil
	default:
		return nil, PromoteOutput{}, err
	}
}
