package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("engine.namespace", "docs"))
	require.NoError(t, store.Set("engine.namespace", "kb"))

	val, ok := store.Get("engine.namespace")
	assert.True(t, ok)
	assert.Equal(t, "kb", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("s", "text")
	_ = store.Set("i", int64(42))
	_ = store.Set("f", 2.5)
	_ = store.Set("fi", 3)
	_ = store.Set("b", true)
	_ = store.Set("tags", []any{"a", 1, "b"})

	assert.Equal(t, "text", store.GetString("s"))
	assert.Equal(t, "", store.GetString("i"))
	assert.Equal(t, 42, store.GetInt("i"))
	assert.Equal(t, 2, store.GetInt("f"))
	assert.Equal(t, 2.5, store.GetFloat("f"))
	assert.Equal(t, 3.0, store.GetFloat("fi"))
	assert.True(t, store.GetBool("b"))
	assert.False(t, store.GetBool("s"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("tags"))
	assert.Nil(t, store.GetStringSlice("s"))
}

func TestConfigStore_GetDuration(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("go", "1m30s")
	_ = store.Set("secs", 45)
	_ = store.Set("secs_string", "10")
	_ = store.Set("bad", "soon")

	assert.Equal(t, 90*time.Second, store.GetDuration("go"))
	assert.Equal(t, 45*time.Second, store.GetDuration("secs"))
	assert.Equal(t, 10*time.Second, store.GetDuration("secs_string"))
	assert.Equal(t, time.Duration(0), store.GetDuration("bad"))
	assert.Equal(t, time.Duration(0), store.GetDuration("missing"))
}

func TestConfigStore_NoopPersistence(t *testing.T) {
	store := NewConfigStore()
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("k", n)
			_ = store.GetInt("k")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("k")
	assert.True(t, ok)
}
