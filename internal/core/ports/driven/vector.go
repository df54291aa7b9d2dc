package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// VectorBackend stores named collections of index entries.
type VectorBackend interface {
	// GetOrCreateCollection returns the named collection, creating it empty
	// if it does not exist.
	GetOrCreateCollection(ctx context.Context, name string) (Collection, error)

	// GetCollection returns an existing collection or
	// domain.ErrCollectionNotFound.
	GetCollection(ctx context.Context, name string) (Collection, error)

	// ListCollections returns all collection names in lexical order.
	ListCollections(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}

// Collection is a named set of index entries with nearest-neighbour search.
type Collection interface {
	// Name returns the collection name.
	Name() string

	// Add stores entries. Entries whose ID already exists are replaced.
	Add(ctx context.Context, entries []domain.IndexEntry) error

	// Query returns up to topK entries nearest to vector by Euclidean
	// distance, nearest first.
	Query(ctx context.Context, vector []float64, topK int) ([]domain.QueryHit, error)

	// Delete removes entries by ID. Unknown IDs are ignored.
	Delete(ctx context.Context, ids []string) error

	// Get returns the entries with the given IDs, skipping unknown IDs.
	Get(ctx context.Context, ids []string) ([]domain.IndexEntry, error)

	// Count returns the number of entries.
	Count(ctx context.Context) (int, error)

	// Dimensions returns the vector length the collection holds, or 0 while
	// it is empty.
	Dimensions(ctx context.Context) (int, error)
}
