// Package mcp provides an MCP (Model Context Protocol) server adapter for
// sercha-rag. It lets AI assistants retrieve grounding passages and manage
// index versions.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrMissingVersionService is returned when the version service is not provided.
var ErrMissingVersionService = errors.New("mcp: version service is required")
