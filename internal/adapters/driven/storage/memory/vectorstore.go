package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/vectormath"
)

// Ensure VectorBackend and Collection implement the interfaces.
var (
	_ driven.VectorBackend = (*VectorBackend)(nil)
	_ driven.Collection    = (*Collection)(nil)
)

// VectorBackend is an in-memory implementation of driven.VectorBackend.
// Queries are exact brute-force scans.
type VectorBackend struct {
	mu          sync.RWMutex
	collections map[string]*Collection
}

// NewVectorBackend creates a new in-memory vector backend.
func NewVectorBackend() *VectorBackend {
	return &VectorBackend{
		collections: make(map[string]*Collection),
	}
}

// GetOrCreateCollection returns the named collection, creating it if needed.
func (b *VectorBackend) GetOrCreateCollection(_ context.Context, name string) (driven.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: collection name is empty", domain.ErrInvalidInput)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.collections[name]
	if !ok {
		c = newCollection(name)
		b.collections[name] = c
	}
	return c, nil
}

// GetCollection returns an existing collection.
func (b *VectorBackend) GetCollection(_ context.Context, name string) (driven.Collection, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	return c, nil
}

// ListCollections returns all collection names in lexical order.
func (b *VectorBackend) ListCollections(_ context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.collections))
	for name := range b.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close releases resources (no-op for memory backend).
func (b *VectorBackend) Close() error {
	return nil
}

// storedEntry keeps an entry with its insertion sequence for stable ties.
type storedEntry struct {
	seq   int
	entry domain.IndexEntry
}

// Collection is an in-memory implementation of driven.Collection.
type Collection struct {
	name string

	mu        sync.RWMutex
	entries   map[string]storedEntry
	dimension int
	nextSeq   int
}

func newCollection(name string) *Collection {
	return &Collection{
		name:    name,
		entries: make(map[string]storedEntry),
	}
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Add stores entries, replacing any with the same ID.
// All vectors in a collection must share one dimensionality.
func (c *Collection) Add(_ context.Context, entries []domain.IndexEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dim := c.dimension
	if len(c.entries) == 0 {
		dim = 0
	}
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("%w: entry without id", domain.ErrInvalidInput)
		}
		if dim == 0 {
			dim = len(e.Embedding)
		}
		if len(e.Embedding) != dim {
			return fmt.Errorf("%w: collection %s holds %d-dim vectors, entry %s has %d",
				domain.ErrEmbeddingDimensionMismatch, c.name, dim, e.ID, len(e.Embedding))
		}
	}

	for _, e := range entries {
		c.entries[e.ID] = storedEntry{seq: c.nextSeq, entry: cloneEntry(e)}
		c.nextSeq++
	}
	if len(c.entries) > 0 {
		c.dimension = dim
	}
	return nil
}

// Query returns up to topK entries nearest to vector.
func (c *Collection) Query(ctx context.Context, vector []float64, topK int) ([]domain.QueryHit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if topK <= 0 || len(c.entries) == 0 {
		return []domain.QueryHit{}, nil
	}
	if len(vector) != c.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection %s has %d",
			domain.ErrEmbeddingDimensionMismatch, len(vector), c.name, c.dimension)
	}

	bySeq := make(map[int]domain.IndexEntry, len(c.entries))
	top := vectormath.NewTopK(topK)
	for _, s := range c.entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := vectormath.L2Distance(vector, s.entry.Embedding)
		if err != nil {
			return nil, err
		}
		bySeq[s.seq] = s.entry
		top.Offer(vectormath.Candidate{Index: s.seq, Distance: d})
	}

	ranked := top.Sorted()
	hits := make([]domain.QueryHit, len(ranked))
	for i, cand := range ranked {
		hits[i] = domain.QueryHit{Entry: cloneEntry(bySeq[cand.Index]), Distance: cand.Distance}
	}
	return hits, nil
}

// Delete removes entries by ID.
func (c *Collection) Delete(_ context.Context, ids []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.entries, id)
	}
	return nil
}

// Get returns the entries with the given IDs in request order.
func (c *Collection) Get(_ context.Context, ids []string) ([]domain.IndexEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.IndexEntry, 0, len(ids))
	for _, id := range ids {
		if s, ok := c.entries[id]; ok {
			out = append(out, cloneEntry(s.entry))
		}
	}
	return out, nil
}

// Count returns the number of entries.
func (c *Collection) Count(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), nil
}

// Dimensions returns the stored vector length, or 0 when empty.
func (c *Collection) Dimensions(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.entries) == 0 {
		return 0, nil
	}
	return c.dimension, nil
}

// cloneEntry copies the slices of an entry so callers cannot mutate
// stored state.
func cloneEntry(e domain.IndexEntry) domain.IndexEntry {
	e.Embedding = append([]float64(nil), e.Embedding...)
	if e.Metadata.Tags != nil {
		e.Metadata.Tags = append([]string(nil), e.Metadata.Tags...)
	}
	return e
}
