package cache_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/smartcache/pkg/cache"
)

func TestCache_Eviction(t *testing.T) {
	// Every value below is a one-letter pair like "aa", whose JSON form is 4 bytes.
	t.Run("evict least recently accessed", func(t *testing.T) {
		c, err := cache.New[string]("test", enabled(time.Minute, 12))
		require.NoError(t, err)

		c.Set("a", "aa")
		c.Set("b", "bb")
		c.Get("a")
		c.Set("c", "cc")

		c.Set("d", "dd")

		assert.False(t, c.Has("b"), "b should have been evicted")
		assert.True(t, c.Has("a"))
		assert.True(t, c.Has("c"))
		assert.True(t, c.Has("d"))

		stats := c.Stats()
		assert.Equal(t, uint64(1), stats.Evictions)
		assert.Equal(t, int64(12), stats.TotalSize)
	})

	t.Run("insertion order breaks ties", func(t *testing.T) {
		c, err := cache.New[string]("test", enabled(time.Minute, 12), cache.WithClock(newFakeClock().Now))
		require.NoError(t, err)

		// A frozen clock gives every entry the same lastAccessedAt.
		c.Set("a", "aa")
		c.Set("b", "bb")
		c.Set("c", "cc")
		c.Set("d", "dd")

		assert.False(t, c.Has("a"))
		assert.ElementsMatch(t, []string{"b", "c", "d"}, c.Keys())
	})

	t.Run("evicts as many entries as needed", func(t *testing.T) {
		c, err := cache.New[string]("test", enabled(time.Minute, 12))
		require.NoError(t, err)

		c.Set("a", "aa")
		c.Set("b", "bb")
		c.Set("c", "cc")
		c.Set("big", "bbbbbbbb") // 10 bytes

		assert.Equal(t, []string{"big"}, c.Keys())
		assert.Equal(t, uint64(3), c.Stats().Evictions)
	})

	t.Run("oversized value is stored alone", func(t *testing.T) {
		c, err := cache.New[string]("test", enabled(time.Minute, 10))
		require.NoError(t, err)

		c.Set("a", "aa")
		assert.True(t, c.Set("huge", strings.Repeat("x", 40)))

		assert.Equal(t, []string{"huge"}, c.Keys())
		assert.Equal(t, int64(42), c.Stats().TotalSize)
	})

	t.Run("replacing a key frees its old size first", func(t *testing.T) {
		c, err := cache.New[string]("test", enabled(time.Minute, 8))
		require.NoError(t, err)

		c.Set("a", "aa")
		c.Set("b", "bb")
		c.Set("a", "cc")

		assert.ElementsMatch(t, []string{"a", "b"}, c.Keys())
		assert.Zero(t, c.Stats().Evictions)
	})

	t.Run("size stays within bound", func(t *testing.T) {
		c, err := cache.New[string]("test", enabled(time.Minute, 50))
		require.NoError(t, err)

		for i := range 100 {
			c.Set(string(rune('a'+i%26))+strings.Repeat("k", i%5), strings.Repeat("v", i%7))
			assert.LessOrEqual(t, c.Stats().TotalSize, int64(50))
		}
	})
}

func TestCache_EvictionCallback(t *testing.T) {
	evicted := make(map[string]any)
	c, err := cache.New[string]("test", enabled(time.Minute, 8),
		cache.WithEvictCallback(func(key string, value any) {
			evicted[key] = value
		}))
	require.NoError(t, err)

	c.Set("a", "aa")
	c.Set("b", "bb")
	c.Set("c", "cc")
	assert.Equal(t, "aa", evicted["a"], "a should have been evicted with its value")

	c.Delete("b")
	_, ok := evicted["b"]
	assert.False(t, ok, "explicit delete is not an eviction")
}
