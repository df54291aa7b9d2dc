package tui

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("tui: search service is required")

// ErrMissingVersionService is returned when the version service is not provided.
var ErrMissingVersionService = errors.New("tui: version service is required")
