package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// IngestionService turns documents into index entries.
type IngestionService interface {
	// Ingest writes documents into the named collection, creating it if
	// needed. Per-document failures are recorded in the report; the error
	// is reserved for failures that stop the whole run.
	Ingest(ctx context.Context, docs []domain.Document, collection string) (*domain.IngestReport, error)

	// Remove deletes every entry previously written for source. It refuses
	// with ErrEmptyCollectionRejected to empty the active collection.
	Remove(ctx context.Context, source, collection string) (int, error)
}
