// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Query   string
	Results []domain.SearchResult
	Err     error
}

// VersionsLoaded carries the namespace versions and the active pointer.
type VersionsLoaded struct {
	Active   string
	Versions []domain.Version
	Err      error
}

// VersionChanged reports the outcome of a promote or rollback.
type VersionChanged struct {
	Active string
	Err    error
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the query input and results.
	ViewSearch ViewType = iota
	// ViewVersions lists versions of the namespace.
	ViewVersions
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewVersions:
		return "versions"
	default:
		return "unknown"
	}
}
