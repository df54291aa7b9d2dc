package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// stepClock advances one second per call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type versionFixture struct {
	index   *VectorIndex
	store   *memory.VersionStore
	manager *VersionManager
}

func newVersionFixture(t *testing.T) *versionFixture {
	t.Helper()
	index := NewVectorIndex(memory.NewVectorBackend())
	store := memory.NewVersionStore()
	clock := &stepClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	return &versionFixture{
		index:   index,
		store:   store,
		manager: NewVersionManager("docs", index, store, WithVersionClock(clock.Now)),
	}
}

// populate writes n entries into collection.
func (f *versionFixture) populate(t *testing.T, collection string, n int) {
	t.Helper()
	col, err := f.index.Open(context.Background(), collection)
	require.NoError(t, err)
	entries := make([]domain.IndexEntry, n)
	for i := range entries {
		entries[i] = domain.IndexEntry{
			ID:        domain.EntryID(collection, i),
			Embedding: []float64{float64(i), 1},
			Text:      "entry",
		}
	}
	require.NoError(t, col.Add(context.Background(), entries))
}

func TestCreateVersion_Generated(t *testing.T) {
	f := newVersionFixture(t)

	v, err := f.manager.CreateVersion(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, "docs_v20260314090001", v.Name)
	assert.Equal(t, domain.VersionBuilding, v.State)
	assert.Equal(t, "docs", v.Namespace)

	_, err = f.index.Collection(context.Background(), v.Name)
	assert.NoError(t, err)
}

func TestCreateVersion_TimestampCollision(t *testing.T) {
	index := NewVectorIndex(memory.NewVectorBackend())
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	m := NewVersionManager("docs", index, memory.NewVersionStore(),
		WithVersionClock(func() time.Time { return fixed }))

	first, err := m.CreateVersion(context.Background(), "")
	require.NoError(t, err)
	second, err := m.CreateVersion(context.Background(), "")
	require.NoError(t, err)

	assert.NotEqual(t, first.Name, second.Name)
	assert.Contains(t, second.Name, first.Name+"_")
}

func TestCreateVersion_Explicit(t *testing.T) {
	f := newVersionFixture(t)

	v, err := f.manager.CreateVersion(context.Background(), "v2")
	require.NoError(t, err)
	assert.Equal(t, "docs_v2", v.Name)

	_, err = f.manager.CreateVersion(context.Background(), "docs_v2")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestAtomicSwap_Success(t *testing.T) {
	f := newVersionFixture(t)
	_, err := f.manager.CreateVersion(context.Background(), "v1")
	require.NoError(t, err)
	f.populate(t, "docs_v1", 3)

	require.NoError(t, f.manager.AtomicSwap(context.Background(), "docs_v1"))

	assert.Equal(t, "docs_v1", f.manager.Active())
	active, err := f.store.Active(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, "docs_v1", active)

	v, err := f.store.Get(context.Background(), "docs_v1")
	require.NoError(t, err)
	assert.Equal(t, domain.VersionActive, v.State)
	assert.Equal(t, 3, v.EntryCount)
	assert.NotNil(t, v.PromotedAt)
}

func TestAtomicSwap_EmptyCollectionRejected(t *testing.T) {
	f := newVersionFixture(t)
	f.populate(t, "docs_v1", 2)
	require.NoError(t, f.manager.AtomicSwap(context.Background(), "docs_v1"))
	_, err := f.manager.CreateVersion(context.Background(), "empty")
	require.NoError(t, err)

	err = f.manager.AtomicSwap(context.Background(), "docs_empty")

	assert.ErrorIs(t, err, domain.ErrEmptyCollectionRejected)
	assert.Equal(t, "docs_v1", f.manager.Active())
}

func TestAtomicSwap_CollectionNotFound(t *testing.T) {
	f := newVersionFixture(t)

	err := f.manager.AtomicSwap(context.Background(), "docs_missing")

	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
	assert.Empty(t, f.manager.Active())
}

func TestAtomicSwap_PersistFailureKeepsPointer(t *testing.T) {
	index := NewVectorIndex(memory.NewVectorBackend())
	store := &failingVersionStore{VersionStore: memory.NewVersionStore()}
	m := NewVersionManager("docs", index, store)
	f := &versionFixture{index: index}
	f.populate(t, "docs_v1", 1)
	f.populate(t, "docs_v2", 1)
	require.NoError(t, m.AtomicSwap(context.Background(), "docs_v1"))

	store.setActiveErr = errors.New("read-only file system")
	err := m.AtomicSwap(context.Background(), "docs_v2")

	assert.Error(t, err)
	assert.Equal(t, "docs_v1", m.Active())
}

func TestAtomicSwap_RetiresPrevious(t *testing.T) {
	f := newVersionFixture(t)
	f.populate(t, "docs_v1", 1)
	f.populate(t, "docs_v2", 1)

	require.NoError(t, f.manager.AtomicSwap(context.Background(), "docs_v1"))
	require.NoError(t, f.manager.AtomicSwap(context.Background(), "docs_v2"))

	prev, err := f.store.Get(context.Background(), "docs_v1")
	require.NoError(t, err)
	assert.Equal(t, domain.VersionRetired, prev.State)
	assert.NotNil(t, prev.RetiredAt)
}

func TestAtomicSwap_AlreadyActive(t *testing.T) {
	f := newVersionFixture(t)
	f.populate(t, "docs_v1", 1)
	require.NoError(t, f.manager.AtomicSwap(context.Background(), "docs_v1"))

	assert.NoError(t, f.manager.AtomicSwap(context.Background(), "docs_v1"))
	assert.Equal(t, "docs_v1", f.manager.Active())
}

func TestPromote(t *testing.T) {
	f := newVersionFixture(t)
	f.populate(t, "docs_v7", 1)

	ok, err := f.manager.Promote(context.Background(), "v7")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "docs_v7", f.manager.Active())

	ok, err = f.manager.Promote(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, ok)
}

func TestRollback(t *testing.T) {
	f := newVersionFixture(t)
	for _, name := range []string{"docs_v1", "docs_v2", "docs_v3"} {
		f.populate(t, name, 1)
		require.NoError(t, f.manager.AtomicSwap(context.Background(), name))
	}

	v, err := f.manager.Rollback(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "docs_v2", v.Name)
	assert.Equal(t, domain.VersionActive, v.State)
	assert.Equal(t, "docs_v2", f.manager.Active())

	// v3 was retired last, so a second rollback returns to it.
	v, err = f.manager.Rollback(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "docs_v3", v.Name)
}

func TestRollback_NoTarget(t *testing.T) {
	f := newVersionFixture(t)
	f.populate(t, "docs_v1", 1)
	require.NoError(t, f.manager.AtomicSwap(context.Background(), "docs_v1"))

	_, err := f.manager.Rollback(context.Background())

	assert.ErrorIs(t, err, domain.ErrNoRollbackTarget)
	assert.Equal(t, "docs_v1", f.manager.Active())
}

func TestLoad(t *testing.T) {
	f := newVersionFixture(t)
	f.populate(t, "docs_v1", 1)
	require.NoError(t, f.manager.AtomicSwap(context.Background(), "docs_v1"))

	restarted := NewVersionManager("docs", f.index, f.store)
	require.NoError(t, restarted.Load(context.Background()))

	assert.Equal(t, "docs_v1", restarted.Active())
}

func TestLoad_MissingCollection(t *testing.T) {
	f := newVersionFixture(t)
	require.NoError(t, f.store.SetActive(context.Background(), "docs", "docs_gone"))

	require.NoError(t, f.manager.Load(context.Background()))

	assert.Empty(t, f.manager.Active())
}

func TestList(t *testing.T) {
	f := newVersionFixture(t)
	_, err := f.manager.CreateVersion(context.Background(), "a")
	require.NoError(t, err)
	_, err = f.manager.CreateVersion(context.Background(), "b")
	require.NoError(t, err)

	versions, err := f.manager.List(context.Background())

	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "docs_a", versions[0].Name)
	assert.Equal(t, "docs_b", versions[1].Name)
}

func TestAtomicSwap_ConcurrentReaders(t *testing.T) {
	f := newVersionFixture(t)
	f.populate(t, "docs_v1", 1)
	f.populate(t, "docs_v2", 1)
	require.NoError(t, f.manager.AtomicSwap(context.Background(), "docs_v1"))

	stop := make(chan struct{})
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := map[string]bool{}
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				name := f.manager.Active()
				mu.Lock()
				seen[name] = true
				mu.Unlock()
			}
		}()
	}

	for i := range 20 {
		target := "docs_v1"
		if i%2 == 0 {
			target = "docs_v2"
		}
		require.NoError(t, f.manager.AtomicSwap(context.Background(), target))
	}
	close(stop)
	wg.Wait()

	for name := range seen {
		assert.Contains(t, []string{"docs_v1", "docs_v2"}, name)
	}
}

func TestCollectionName(t *testing.T) {
	m := NewVersionManager("docs", nil, nil)

	assert.Equal(t, "docs_v1", m.CollectionName("v1"))
	assert.Equal(t, "docs_v1", m.CollectionName("docs_v1"))
	assert.Equal(t, "docs", m.Namespace())
}
