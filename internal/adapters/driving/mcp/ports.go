package mcp

import (
	"net/http"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server needs.
type Ports struct {
	// Search answers retrieval queries.
	Search driving.SearchService

	// Versions lists and promotes index versions.
	Versions driving.VersionService

	// Metrics is served at /metrics in HTTP mode. Optional.
	Metrics http.Handler
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Versions == nil {
		return ErrMissingVersionService
	}
	return nil
}
