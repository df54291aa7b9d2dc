package domain

// Document is a unit of source text submitted for ingestion.
// Documents are immutable once handed to the ingestion pipeline.
type Document struct {
	// ID is the caller's identifier for the document.
	ID string

	// Source identifies where the text came from (file path, URL).
	// Entry IDs are derived from it, so it must be stable across runs.
	Source string

	// Title is the human-readable title.
	Title string

	// Content is the full text before chunking.
	Content string

	// Tags are free-form labels copied onto every entry.
	Tags []string
}

// SourceKey returns the value entry IDs are derived from.
// Documents without a Source fall back to their ID.
func (d *Document) SourceKey() string {
	if d.Source != "" {
		return d.Source
	}
	return d.ID
}

// Chunk is a contiguous word window cut from a document.
// Chunks are derived during ingestion and never persisted on their own.
type Chunk struct {
	// DocumentID links to the parent Document.
	DocumentID string

	// Position is the zero-based ordinal within the document.
	Position int

	// Content is the text of this window.
	Content string

	// WordCount is the number of whitespace-separated words in Content.
	WordCount int
}
