// Package tui provides an interactive terminal interface for searching the
// active index version and managing versions.
package tui

import (
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI needs.
type Ports struct {
	// Search answers queries against the active version.
	Search driving.SearchService

	// Versions lists, promotes and rolls back versions.
	Versions driving.VersionService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Versions == nil {
		return ErrMissingVersionService
	}
	return nil
}
