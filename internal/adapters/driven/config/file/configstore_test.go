package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*ConfigStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestNewConfigStore_Success(t *testing.T) {
	store, dir := newStore(t)

	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "a", "b")

	store, err := NewConfigStore(nestedPath)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(nestedPath, "config.toml"), store.Path())
	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[chunking\nsize = "), 0600))

	_, err := NewConfigStore(dir)

	assert.Error(t, err)
}

func TestConfigStore_Getters(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Set("s", "text"))
	require.NoError(t, store.Set("i", 42))
	require.NoError(t, store.Set("b", true))
	require.NoError(t, store.Set("f", 2.5))
	require.NoError(t, store.Set("list", []string{"a", "b"}))

	assert.Equal(t, "text", store.GetString("s"))
	assert.Equal(t, "", store.GetString("i"))
	assert.Equal(t, 42, store.GetInt("i"))
	assert.Equal(t, 0, store.GetInt("s"))
	assert.True(t, store.GetBool("b"))
	assert.False(t, store.GetBool("s"))
	assert.Equal(t, 2.5, store.GetFloat("f"))
	assert.Equal(t, 42.0, store.GetFloat("i"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("list"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_GetDuration(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Set("a", "1m30s"))
	require.NoError(t, store.Set("b", int64(45)))
	require.NoError(t, store.Set("c", "12"))
	require.NoError(t, store.Set("d", "soon"))

	assert.Equal(t, 90*time.Second, store.GetDuration("a"))
	assert.Equal(t, 45*time.Second, store.GetDuration("b"))
	assert.Equal(t, 12*time.Second, store.GetDuration("c"))
	assert.Zero(t, store.GetDuration("d"))
	assert.Zero(t, store.GetDuration("missing"))
}

func TestConfigStore_WritesTables(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Set("chunking.size", 500))
	require.NoError(t, store.Set("chunking.overlap", 50))
	require.NoError(t, store.Set("engine.namespace", "kb"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[chunking]")
	assert.Contains(t, string(data), "[engine]")
	assert.NotContains(t, string(data), "'chunking.size'")
}

func TestConfigStore_SaveReload_PreservesData(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, store.Set("engine.namespace", "kb"))
	require.NoError(t, store.Set("chunking.size", int64(500)))
	require.NoError(t, store.Set("embedding.requests_per_second", 2.5))
	require.NoError(t, store.Set("embedding.timeout", "10s"))
	require.NoError(t, store.Set("storage.backend", "memory"))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "kb", reloaded.GetString("engine.namespace"))
	assert.Equal(t, 500, reloaded.GetInt("chunking.size"))
	assert.Equal(t, 2.5, reloaded.GetFloat("embedding.requests_per_second"))
	assert.Equal(t, 10*time.Second, reloaded.GetDuration("embedding.timeout"))
	assert.Equal(t, "memory", reloaded.GetString("storage.backend"))
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[engine]
namespace = "handbook"

[embedding]
provider = "openai"
timeout = 20
requests_per_second = 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "handbook", store.GetString("engine.namespace"))
	assert.Equal(t, "openai", store.GetString("embedding.provider"))
	assert.Equal(t, 20*time.Second, store.GetDuration("embedding.timeout"))
	assert.Equal(t, 3.0, store.GetFloat("embedding.requests_per_second"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Set("k", "v"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Load_EmptyTOMLData(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("# Just a comment\n\n"), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	val, ok := store.Get("any_key")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, _ := newStore(t)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set("search.default_top_k", i)
			_ = store.GetInt("search.default_top_k")
		}()
	}
	wg.Wait()

	_, ok := store.Get("search.default_top_k")
	assert.True(t, ok)
}

func TestNestMap(t *testing.T) {
	got := nestMap(map[string]any{
		"a":     1,
		"a.b":   2,
		"c.d.e": 3,
		"c.f":   4,
	})

	assert.Equal(t, 1, got["a"])
	assert.Equal(t, 2, got["a.b"])
	assert.Equal(t, map[string]any{"d": map[string]any{"e": 3}, "f": 4}, got["c"])

	assert.Equal(t, map[string]any{"a": 1, "a.b": 2, "c.d.e": 3, "c.f": 4}, flattenMap(got, ""))
}
