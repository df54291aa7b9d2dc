package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// SearchService answers similarity queries against the active version.
type SearchService interface {
	// Search returns up to topK results ordered by descending relevance.
	// A non-positive topK uses the configured default.
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
}
