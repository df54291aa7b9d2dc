package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

const waitTimeout = 3 * time.Second

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	w := NewWatcher(NewLoader(), WithDebounce(20*time.Millisecond))
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func nextChange(t *testing.T, ch <-chan domain.FileChange) domain.FileChange {
	t.Helper()
	select {
	case change, ok := <-ch:
		require.True(t, ok, "channel closed")
		return change
	case <-time.After(waitTimeout):
		t.Fatal("timeout waiting for file change event")
		return domain.FileChange{}
	}
}

func TestWatcher_Watch(t *testing.T) {
	t.Run("reports created files", func(t *testing.T) {
		dir := t.TempDir()
		changes, err := newTestWatcher(t).Watch(context.Background(), dir)
		require.NoError(t, err)

		path := filepath.Join(dir, "new-file.txt")
		require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

		change := nextChange(t, changes)
		assert.Equal(t, domain.ChangeCreated, change.Type)
		assert.Equal(t, path, change.Path)
	})

	t.Run("reports modifications", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "test.md")
		require.NoError(t, os.WriteFile(path, []byte("initial"), 0o644))

		changes, err := newTestWatcher(t).Watch(context.Background(), dir)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, []byte("modified"), 0o644))

		change := nextChange(t, changes)
		assert.Equal(t, domain.ChangeUpdated, change.Type)
		assert.Equal(t, path, change.Path)
	})

	t.Run("reports deletions", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "to-delete.txt")
		require.NoError(t, os.WriteFile(path, []byte("delete me"), 0o644))

		changes, err := newTestWatcher(t).Watch(context.Background(), dir)
		require.NoError(t, err)
		require.NoError(t, os.Remove(path))

		change := nextChange(t, changes)
		assert.Equal(t, domain.ChangeDeleted, change.Type)
		assert.Equal(t, path, change.Path)
	})

	t.Run("ignores unsupported and hidden files", func(t *testing.T) {
		dir := t.TempDir()
		changes, err := newTestWatcher(t).Watch(context.Background(), dir)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte("x"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".swap.txt"), []byte("x"), 0o644))
		path := filepath.Join(dir, "kept.txt")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

		assert.Equal(t, path, nextChange(t, changes).Path)
	})

	t.Run("watches new subdirectories", func(t *testing.T) {
		dir := t.TempDir()
		changes, err := newTestWatcher(t).Watch(context.Background(), dir)
		require.NoError(t, err)

		sub := filepath.Join(dir, "sub")
		require.NoError(t, os.Mkdir(sub, 0o755))
		time.Sleep(50 * time.Millisecond)
		path := filepath.Join(sub, "inner.md")
		require.NoError(t, os.WriteFile(path, []byte("# Inner"), 0o644))

		change := nextChange(t, changes)
		assert.Equal(t, domain.ChangeCreated, change.Type)
		assert.Equal(t, path, change.Path)
	})

	t.Run("single file watch ignores siblings", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "watched.txt")
		require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

		changes, err := newTestWatcher(t).Watch(context.Background(), path)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "sibling.txt"), []byte("x"), 0o644))
		require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))

		change := nextChange(t, changes)
		assert.Equal(t, path, change.Path)
	})

	t.Run("returns error for missing path", func(t *testing.T) {
		changes, err := newTestWatcher(t).Watch(context.Background(), "/non/existent/path")
		assert.Error(t, err)
		assert.Nil(t, changes)
	})

	t.Run("closes channel when context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		changes, err := newTestWatcher(t).Watch(ctx, t.TempDir())
		require.NoError(t, err)

		cancel()
		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(waitTimeout):
			t.Fatal("channel did not close after context cancellation")
		}
	})

	t.Run("returns error when closed", func(t *testing.T) {
		w := newTestWatcher(t)
		require.NoError(t, w.Close())
		require.NoError(t, w.Close())

		changes, err := w.Watch(context.Background(), t.TempDir())
		assert.ErrorIs(t, err, ErrWatcherClosed)
		assert.Nil(t, changes)
	})
}

func TestMergeChange(t *testing.T) {
	tests := []struct {
		name string
		prev *domain.ChangeType
		next domain.ChangeType
		want domain.ChangeType
	}{
		{"first event", nil, domain.ChangeUpdated, domain.ChangeUpdated},
		{"create then write", ptr(domain.ChangeCreated), domain.ChangeUpdated, domain.ChangeCreated},
		{"write then delete", ptr(domain.ChangeUpdated), domain.ChangeDeleted, domain.ChangeDeleted},
		{"delete then create", ptr(domain.ChangeDeleted), domain.ChangeCreated, domain.ChangeUpdated},
		{"write then write", ptr(domain.ChangeUpdated), domain.ChangeUpdated, domain.ChangeUpdated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pending := map[string]pendingChange{}
			if tt.prev != nil {
				pending["p"] = pendingChange{typ: *tt.prev}
			}
			assert.Equal(t, tt.want, mergeChange(pending, "p", tt.next))
		})
	}
}

func ptr(c domain.ChangeType) *domain.ChangeType { return &c }
