package domain

import "fmt"

// DocumentLevel is the ChunkIndex recorded for failures that happened
// before a document was chunked.
const DocumentLevel = -1

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// Collection is the collection written to.
	Collection string

	// Written is the number of entries upserted.
	Written int

	// Skipped is the number of documents below the minimum length.
	Skipped int

	// Failed is the number of recorded failures.
	Failed int

	// Degraded is the number of entries stored with a fallback vector.
	Degraded int

	// Failures lists each recorded failure.
	Failures []IngestFailure
}

// IngestFailure records one document or chunk that could not be written.
type IngestFailure struct {
	DocumentID string
	Source     string
	ChunkIndex int
	Err        error
}

// Error implements error.
func (f IngestFailure) Error() string {
	if f.ChunkIndex == DocumentLevel {
		return fmt.Sprintf("document %q: %v", f.DocumentID, f.Err)
	}
	return fmt.Sprintf("document %q chunk %d: %v", f.DocumentID, f.ChunkIndex, f.Err)
}

// Unwrap returns the underlying error.
func (f IngestFailure) Unwrap() error {
	return f.Err
}

// AddFailure appends a failure and keeps Failed in step.
func (r *IngestReport) AddFailure(f IngestFailure) {
	r.Failures = append(r.Failures, f)
	r.Failed = len(r.Failures)
}
