package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure VersionStore implements the interface.
var _ driven.VersionStore = (*VersionStore)(nil)

// VersionStore is an in-memory implementation of driven.VersionStore.
type VersionStore struct {
	mu       sync.RWMutex
	versions map[string]domain.Version
	active   map[string]string
}

// NewVersionStore creates a new in-memory version store.
func NewVersionStore() *VersionStore {
	return &VersionStore{
		versions: make(map[string]domain.Version),
		active:   make(map[string]string),
	}
}

// Save creates or updates a version record.
func (s *VersionStore) Save(_ context.Context, v domain.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[v.Name] = v
	return nil
}

// Get returns a version by name.
func (s *VersionStore) Get(_ context.Context, name string) (*domain.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.versions[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

// List returns all versions of a namespace, oldest first.
func (s *VersionStore) List(_ context.Context, namespace string) ([]domain.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Version, 0)
	for _, v := range s.versions {
		if v.Namespace == namespace {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// SetActive records the active collection of a namespace.
func (s *VersionStore) SetActive(_ context.Context, namespace, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[namespace] = name
	return nil
}

// Active returns the active collection of a namespace.
func (s *VersionStore) Active(_ context.Context, namespace string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active[namespace], nil
}
