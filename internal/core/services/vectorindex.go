package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// VectorIndex gives the services upsert semantics over any VectorBackend.
type VectorIndex struct {
	backend driven.VectorBackend
}

// NewVectorIndex creates a vector index over backend.
func NewVectorIndex(backend driven.VectorBackend) *VectorIndex {
	return &VectorIndex{backend: backend}
}

// Open returns the named collection, creating it empty if needed.
func (v *VectorIndex) Open(ctx context.Context, name string) (*IndexCollection, error) {
	c, err := v.backend.GetOrCreateCollection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", name, err)
	}
	return &IndexCollection{c: c}, nil
}

// Collection returns an existing collection or ErrCollectionNotFound.
func (v *VectorIndex) Collection(ctx context.Context, name string) (*IndexCollection, error) {
	c, err := v.backend.GetCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	return &IndexCollection{c: c}, nil
}

// List returns all collection names.
func (v *VectorIndex) List(ctx context.Context) ([]string, error) {
	return v.backend.ListCollections(ctx)
}

// Close closes the backend.
func (v *VectorIndex) Close() error {
	return v.backend.Close()
}

// IndexCollection is one collection of the index.
type IndexCollection struct {
	c driven.Collection
}

// Name returns the collection name.
func (c *IndexCollection) Name() string {
	return c.c.Name()
}

// Add upserts entries: IDs repeated in the batch keep their last entry,
// and any stored entries with the same IDs are deleted before the add.
func (c *IndexCollection) Add(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	pos := make(map[string]int, len(entries))
	unique := make([]domain.IndexEntry, 0, len(entries))
	for _, e := range entries {
		if i, ok := pos[e.ID]; ok {
			unique[i] = e
			continue
		}
		pos[e.ID] = len(unique)
		unique = append(unique, e)
	}

	ids := make([]string, len(unique))
	for i, e := range unique {
		ids[i] = e.ID
	}
	if err := c.c.Delete(ctx, ids); err != nil {
		return fmt.Errorf("delete before add: %w", err)
	}
	if err := c.c.Add(ctx, unique); err != nil {
		return fmt.Errorf("add entries: %w", err)
	}
	return nil
}

// Query returns up to topK entries nearest to vector, nearest first.
func (c *IndexCollection) Query(ctx context.Context, vector []float64, topK int) ([]domain.QueryHit, error) {
	if topK <= 0 {
		return []domain.QueryHit{}, nil
	}
	return c.c.Query(ctx, vector, topK)
}

// Delete removes entries by ID.
func (c *IndexCollection) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.c.Delete(ctx, ids)
}

// Get returns stored entries by ID.
func (c *IndexCollection) Get(ctx context.Context, ids []string) ([]domain.IndexEntry, error) {
	if len(ids) == 0 {
		return []domain.IndexEntry{}, nil
	}
	return c.c.Get(ctx, ids)
}

// Count returns the number of entries.
func (c *IndexCollection) Count(ctx context.Context) (int, error) {
	return c.c.Count(ctx)
}

// Dimensions returns the stored vector length, 0 while empty.
func (c *IndexCollection) Dimensions(ctx context.Context) (int, error) {
	return c.c.Dimensions(ctx)
}
