package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockProvider implements driven.EmbeddingProvider for testing.
// By default it maps text to a deterministic vector of length dims.
type mockProvider struct {
	dims     int
	embedErr error
	// fn overrides the default mapping when set.
	fn func(text string) ([]float64, error)

	calls       atomic.Int64
	inFlight    atomic.Int64
	maxInFlight atomic.Int64
	gate        chan struct{}
}

func (m *mockProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	m.calls.Add(1)
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		cur := m.maxInFlight.Load()
		if n <= cur || m.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.fn != nil {
		return m.fn(text)
	}
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return textVector(text, m.dims), nil
}

func (m *mockProvider) ModelName() string          { return "mock-embed" }
func (m *mockProvider) Ping(_ context.Context) error { return m.embedErr }
func (m *mockProvider) Close() error               { return nil }

var _ driven.EmbeddingProvider = (*mockProvider)(nil)

// textVector derives a small deterministic vector from text.
func textVector(text string, dims int) []float64 {
	if dims <= 0 {
		dims = 4
	}
	v := make([]float64, dims)
	for i, r := range text {
		v[i%dims] += float64(r%17) / 100
	}
	return v
}

// keywordProvider embeds texts onto axes by keyword so distances are easy
// to reason about: a text containing "alpha" lies on axis 0, "beta" on
// axis 1, "gamma" on axis 2.
type keywordProvider struct {
	failing atomic.Bool
}

func (k *keywordProvider) Embed(_ context.Context, text string) ([]float64, error) {
	if k.failing.Load() {
		return nil, errors.New("connection refused")
	}
	v := make([]float64, 3)
	for i, word := range []string{"alpha", "beta", "gamma"} {
		if strings.Contains(text, word) {
			v[i] = 1
		}
	}
	return v, nil
}

func (k *keywordProvider) ModelName() string          { return "keyword" }
func (k *keywordProvider) Ping(_ context.Context) error { return nil }
func (k *keywordProvider) Close() error               { return nil }

// failingBackend implements driven.VectorBackend with every call failing.
type failingBackend struct {
	err error
}

func (f *failingBackend) GetOrCreateCollection(_ context.Context, _ string) (driven.Collection, error) {
	return nil, f.err
}
func (f *failingBackend) GetCollection(_ context.Context, _ string) (driven.Collection, error) {
	return nil, f.err
}
func (f *failingBackend) ListCollections(_ context.Context) ([]string, error) { return nil, f.err }
func (f *failingBackend) Close() error                                        { return nil }

// flakyCollection wraps a collection and fails Query or Add on demand.
type flakyCollection struct {
	driven.Collection
	queryErr error
	addErr   func(entries []domain.IndexEntry) error
}

func (f *flakyCollection) Query(ctx context.Context, v []float64, k int) ([]domain.QueryHit, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.Collection.Query(ctx, v, k)
}

func (f *flakyCollection) Add(ctx context.Context, entries []domain.IndexEntry) error {
	if f.addErr != nil {
		if err := f.addErr(entries); err != nil {
			return err
		}
	}
	return f.Collection.Add(ctx, entries)
}

// wrappingBackend returns flaky wrappers around a real backend's collections.
type wrappingBackend struct {
	driven.VectorBackend
	mu   sync.Mutex
	wrap func(c driven.Collection) driven.Collection
}

func (w *wrappingBackend) GetOrCreateCollection(ctx context.Context, name string) (driven.Collection, error) {
	c, err := w.VectorBackend.GetOrCreateCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.wrap(c), nil
}

func (w *wrappingBackend) GetCollection(ctx context.Context, name string) (driven.Collection, error) {
	c, err := w.VectorBackend.GetCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.wrap(c), nil
}

// failingVersionStore fails SetActive so a swap cannot be persisted.
type failingVersionStore struct {
	driven.VersionStore
	setActiveErr error
}

func (f *failingVersionStore) SetActive(ctx context.Context, ns, name string) error {
	if f.setActiveErr != nil {
		return f.setActiveErr
	}
	return f.VersionStore.SetActive(ctx, ns, name)
}
