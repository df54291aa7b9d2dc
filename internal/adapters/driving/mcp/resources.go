package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for sercha-rag resources.
	uriScheme = "sercha-rag://"

	versionsURI = uriScheme + "versions"
)

// VersionInfo is the JSON form of a version.
type VersionInfo struct {
	Name       string `json:"name"`
	State      string `json:"state"`
	EntryCount int    `json:"entry_count"`
	CreatedAt  string `json:"created_at"`
	PromotedAt string `json:"promoted_at,omitempty"`
	RetiredAt  string `json:"retired_at,omitempty"`
}

func versionInfos(versions []domain.Version) []VersionInfo {
	infos := make([]VersionInfo, len(versions))
	for i, v := range versions {
		infos[i] = VersionInfo{
			Name:       v.Name,
			State:      v.State.String(),
			EntryCount: v.EntryCount,
			CreatedAt:  v.CreatedAt.UTC().Format(time.RFC3339),
			PromotedAt: formatOptional(v.PromotedAt),
			RetiredAt:  formatOptional(v.RetiredAt),
		}
	}
	return infos
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         versionsURI,
		Name:        "versions",
		Description: "All index versions of the namespace, oldest first",
		MIMEType:    "application/json",
	}, s.handleVersionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: versionsURI + "/{name}",
		Name:        "version",
		Description: "A single index version",
		MIMEType:    "application/json",
	}, s.handleVersionResource)
}

// handleVersionsResource returns every version with the active name.
func (s *Server) handleVersionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	versions, err := s.ports.Versions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}

	return jsonResource(req.Params.URI, ListVersionsOutput{
		Namespace: s.ports.Versions.Namespace(),
		Active:    s.ports.Versions.Active(),
		Versions:  versionInfos(versions),
	})
}

// handleVersionResource returns one version by collection name.
func (s *Server) handleVersionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractVersionName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	versions, err := s.ports.Versions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}
	for _, info := range versionInfos(versions) {
		if info.Name == name {
			return jsonResource(req.Params.URI, info)
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractVersionName extracts the name from sercha-rag://versions/{name}.
func extractVersionName(uri string) string {
	const prefix = versionsURI + "/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	name := strings.TrimPrefix(uri, prefix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
