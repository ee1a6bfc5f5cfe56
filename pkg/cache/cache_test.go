package cache_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/smartcache/pkg/cache"
)

func TestCache_Basic(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		c, err := cache.New[int]("test", enabled(time.Minute, 0))
		require.NoError(t, err)

		assert.True(t, c.Set("a", 1))
		assert.True(t, c.Set("b", 2))

		val, ok := c.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 1, val)

		val, ok = c.Get("b")
		assert.True(t, ok)
		assert.Equal(t, 2, val)

		assert.Equal(t, 2, c.Len())
	})

	t.Run("get non-existent", func(t *testing.T) {
		c, err := cache.New[int]("test", enabled(time.Minute, 0))
		require.NoError(t, err)

		val, ok := c.Get("missing")
		assert.False(t, ok)
		assert.Equal(t, 0, val)
		assert.Equal(t, uint64(1), c.Stats().Misses)
	})

	t.Run("has does not touch stats", func(t *testing.T) {
		c, err := cache.New[string]("test", enabled(time.Minute, 0))
		require.NoError(t, err)

		c.Set("a", "x")
		assert.True(t, c.Has("a"))
		assert.False(t, c.Has("b"))

		stats := c.Stats()
		assert.Zero(t, stats.Hits)
		assert.Zero(t, stats.Misses)
	})

	t.Run("keys are most recent first", func(t *testing.T) {
		c, err := cache.New[int]("test", enabled(time.Minute, 0))
		require.NoError(t, err)

		c.Set("a", 1)
		c.Set("b", 2)
		c.Set("c", 3)
		c.Get("a")

		assert.Equal(t, []string{"a", "c", "b"}, c.Keys())
	})

	t.Run("name and config accessors", func(t *testing.T) {
		cfg := enabled(time.Minute, 100)
		c, err := cache.New[int]("named", cfg)
		require.NoError(t, err)

		assert.Equal(t, "named", c.Name())
		assert.Equal(t, cfg, c.Config())
	})
}

func TestCache_TTL(t *testing.T) {
	t.Run("entry expires after ttl", func(t *testing.T) {
		clock := newFakeClock()
		c, err := cache.New[string]("test", enabled(100*time.Millisecond, 1000), cache.WithClock(clock.Now))
		require.NoError(t, err)

		c.Set("a", "x")
		val, ok := c.Get("a")
		require.True(t, ok)
		assert.Equal(t, "x", val)

		clock.Advance(150 * time.Millisecond)

		_, ok = c.Get("a")
		assert.False(t, ok)

		stats := c.Stats()
		assert.Equal(t, uint64(1), stats.Hits)
		assert.Equal(t, uint64(1), stats.Misses)
		assert.Equal(t, uint64(1), stats.Expirations)
	})

	t.Run("age equal to ttl is still live", func(t *testing.T) {
		clock := newFakeClock()
		c, err := cache.New[string]("test", enabled(100*time.Millisecond, 0), cache.WithClock(clock.Now))
		require.NoError(t, err)

		c.Set("a", "x")
		clock.Advance(100 * time.Millisecond)
		assert.True(t, c.Has("a"))

		clock.Advance(time.Millisecond)
		assert.False(t, c.Has("a"))
	})

	t.Run("lazy expiry removes the entry", func(t *testing.T) {
		clock := newFakeClock()
		c, err := cache.New[string]("test", enabled(time.Second, 0), cache.WithClock(clock.Now))
		require.NoError(t, err)

		c.Set("a", "x")
		c.Set("b", "y")
		clock.Advance(2 * time.Second)

		// Expired but unswept entries are still listed.
		assert.ElementsMatch(t, []string{"a", "b"}, c.Keys())

		assert.False(t, c.Has("a"))
		assert.Equal(t, []string{"b"}, c.Keys())
		assert.Equal(t, int64(3), c.Stats().TotalSize)
	})

	t.Run("per-entry ttl overrides default", func(t *testing.T) {
		clock := newFakeClock()
		c, err := cache.New[string]("test", enabled(time.Hour, 0), cache.WithClock(clock.Now))
		require.NoError(t, err)

		c.SetWithTTL("short", "x", time.Second)
		c.Set("long", "y")
		clock.Advance(2 * time.Second)

		assert.False(t, c.Has("short"))
		assert.True(t, c.Has("long"))
	})

	t.Run("zero ttl never expires", func(t *testing.T) {
		clock := newFakeClock()
		c, err := cache.New[string]("test", enabled(0, 0), cache.WithClock(clock.Now))
		require.NoError(t, err)

		c.Set("a", "x")
		clock.Advance(24 * time.Hour)
		assert.True(t, c.Has("a"))
	})

	t.Run("delete expired", func(t *testing.T) {
		clock := newFakeClock()
		c, err := cache.New[int]("test", enabled(time.Second, 0), cache.WithClock(clock.Now))
		require.NoError(t, err)

		c.Set("a", 1)
		c.Set("b", 2)
		c.SetWithTTL("c", 3, time.Hour)
		clock.Advance(2 * time.Second)

		assert.Equal(t, 2, c.DeleteExpired())
		assert.Equal(t, []string{"c"}, c.Keys())
		assert.Equal(t, uint64(2), c.Stats().Expirations)
	})
}

func TestCache_Disabled(t *testing.T) {
	c, err := cache.New[int]("test", cache.Config{TTL: time.Minute})
	require.NoError(t, err)

	assert.False(t, c.Set("a", 1))
	assert.Equal(t, 0, c.Len())

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, uint64(1), c.Stats().Misses)

	on := true
	require.NoError(t, c.UpdateConfig(cache.ConfigUpdate{Enabled: &on}))
	assert.True(t, c.Set("a", 1))

	off := false
	require.NoError(t, c.UpdateConfig(cache.ConfigUpdate{Enabled: &off}))
	assert.False(t, c.Has("a"))
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len(), "disabling keeps existing entries")
}

func TestCache_Delete(t *testing.T) {
	c, err := cache.New[string]("test", enabled(time.Minute, 0))
	require.NoError(t, err)

	c.Set("a", "x")
	c.Set("b", "y")

	assert.True(t, c.Delete("a"))
	_, ok := c.Get("a")
	assert.False(t, ok)

	before := c.Stats()
	assert.False(t, c.Delete("a"))
	assert.False(t, c.Delete("missing"))
	after := c.Stats()

	assert.Equal(t, before.TotalSize, after.TotalSize)
	assert.Equal(t, before.EntryCount, after.EntryCount)
	assert.Equal(t, 1, after.EntryCount)
}

func TestCache_Clear(t *testing.T) {
	c, err := cache.New[int]("test", enabled(time.Minute, 0))
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Keys())
	assert.Zero(t, c.Stats().TotalSize)

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCache_SizeAccounting(t *testing.T) {
	t.Run("replacement does not double count", func(t *testing.T) {
		c, err := cache.New[string]("test", enabled(time.Minute, 0))
		require.NoError(t, err)

		c.Set("k", "aa")   // "aa" -> 4 bytes
		c.Set("k", "aaaa") // "aaaa" -> 6 bytes

		stats := c.Stats()
		assert.Equal(t, 1, stats.EntryCount)
		assert.Equal(t, int64(6), stats.TotalSize)

		val, ok := c.Get("k")
		require.True(t, ok)
		assert.Equal(t, "aaaa", val)
	})

	t.Run("unmeasurable value uses default size", func(t *testing.T) {
		c, err := cache.New[any]("test", enabled(time.Minute, 0))
		require.NoError(t, err)

		assert.True(t, c.Set("ch", make(chan int)))
		assert.Equal(t, cache.DefaultEntrySize, c.Stats().TotalSize)
		assert.True(t, c.Has("ch"))
	})

	t.Run("custom sizer", func(t *testing.T) {
		c, err := cache.New[string]("test", enabled(time.Minute, 0),
			cache.WithSizer(func(v any) (int64, error) { return int64(len(v.(string))), nil }))
		require.NoError(t, err)

		c.Set("k", "hello")
		assert.Equal(t, int64(5), c.Stats().TotalSize)
	})
}

func TestCache_UpdateConfig(t *testing.T) {
	t.Run("shrinking max size evicts", func(t *testing.T) {
		c, err := cache.New[string]("test", enabled(time.Minute, 100))
		require.NoError(t, err)

		c.Set("a", "aa")
		c.Set("b", "bb")
		c.Set("c", "cc")

		size := int64(8)
		require.NoError(t, c.UpdateConfig(cache.ConfigUpdate{MaxSize: &size}))

		assert.Equal(t, []string{"c", "b"}, c.Keys())
		assert.Equal(t, uint64(1), c.Stats().Evictions)
		assert.Equal(t, int64(8), c.Config().MaxSize)
	})

	t.Run("ttl change keeps entries", func(t *testing.T) {
		c, err := cache.New[string]("test", enabled(time.Minute, 0))
		require.NoError(t, err)

		c.Set("a", "x")
		ttl := time.Hour
		require.NoError(t, c.UpdateConfig(cache.ConfigUpdate{TTL: &ttl}))

		assert.True(t, c.Has("a"))
		assert.Equal(t, time.Hour, c.Config().TTL)
	})

	t.Run("rejects negative values", func(t *testing.T) {
		c, err := cache.New[string]("test", enabled(time.Minute, 10))
		require.NoError(t, err)

		size := int64(-1)
		err = c.UpdateConfig(cache.ConfigUpdate{MaxSize: &size})
		require.ErrorIs(t, err, cache.ErrInvalidConfig)

		ttl := -time.Second
		err = c.UpdateConfig(cache.ConfigUpdate{TTL: &ttl})
		require.ErrorIs(t, err, cache.ErrInvalidConfig)

		assert.Equal(t, int64(10), c.Config().MaxSize)
	})

	t.Run("persist requires a store", func(t *testing.T) {
		c, err := cache.New[string]("test", enabled(time.Minute, 0))
		require.NoError(t, err)

		on := true
		require.ErrorIs(t, c.UpdateConfig(cache.ConfigUpdate{Persist: &on}), cache.ErrNoStore)
	})
}

func TestNew_Validation(t *testing.T) {
	_, err := cache.New[int]("", enabled(time.Minute, 0))
	require.ErrorIs(t, err, cache.ErrEmptyName)

	_, err = cache.New[int]("test", cache.Config{MaxSize: -1, Enabled: true})
	require.ErrorIs(t, err, cache.ErrInvalidConfig)

	_, err = cache.New[int]("test", cache.Config{TTL: -time.Second, Enabled: true})
	require.ErrorIs(t, err, cache.ErrInvalidConfig)

	_, err = cache.New[int]("test", cache.Config{Enabled: true, Persist: true})
	require.ErrorIs(t, err, cache.ErrNoStore)
}

func TestStats(t *testing.T) {
	t.Run("hit rate is zero without lookups", func(t *testing.T) {
		c, err := cache.New[int]("test", enabled(time.Minute, 0))
		require.NoError(t, err)

		stats := c.Stats()
		assert.Zero(t, stats.HitRate)
		assert.Equal(t, 0.0, cache.HitRate(0, 0))
	})

	t.Run("hit rate arithmetic", func(t *testing.T) {
		c, err := cache.New[int]("test", enabled(time.Minute, 0))
		require.NoError(t, err)

		c.Set("a", 1)
		c.Get("a")
		c.Get("a")
		c.Get("a")
		c.Get("missing")

		stats := c.Stats()
		assert.Equal(t, uint64(3), stats.Hits)
		assert.Equal(t, uint64(1), stats.Misses)
		assert.InDelta(t, 0.75, stats.HitRate, 1e-9)
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		c, err := cache.New[int]("test", enabled(time.Minute, 0))
		require.NoError(t, err)

		stats := c.Stats()
		stats.Hits = 100
		assert.Zero(t, c.Stats().Hits)
	})

	t.Run("reset", func(t *testing.T) {
		c, err := cache.New[int]("test", enabled(time.Minute, 0))
		require.NoError(t, err)

		c.Set("a", 1)
		c.Get("a")
		c.Get("b")
		c.ResetStats()

		stats := c.Stats()
		assert.Zero(t, stats.Hits)
		assert.Zero(t, stats.Misses)
		assert.Equal(t, 1, stats.EntryCount)
	})
}

func TestCache_Concurrent(t *testing.T) {
	c, err := cache.New[int]("test", enabled(time.Minute, 2000))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(3)
		go func(val int) {
			defer wg.Done()
			c.Set(fmt.Sprintf("k%d", val), val)
		}(i)
		go func(key int) {
			defer wg.Done()
			c.Get(fmt.Sprintf("k%d", key))
		}(i)
		go func(key int) {
			defer wg.Done()
			if key%2 == 0 {
				c.Delete(fmt.Sprintf("k%d", key))
			}
		}(i)
	}
	wg.Wait()

	stats := c.Stats()
	var sum int64
	for _, k := range c.Keys() {
		v, ok := c.Get(k)
		require.True(t, ok)
		sum += int64(len(fmt.Sprint(v)))
	}
	assert.Equal(t, sum, stats.TotalSize, "running size matches live entries")
	assert.LessOrEqual(t, stats.TotalSize, int64(2000))
}

func BenchmarkCache_Set(b *testing.B) {
	c, _ := cache.New[int]("bench", enabled(time.Minute, 4000))

	b.ResetTimer()
	for i := range b.N {
		c.Set(fmt.Sprint(i%2000), i)
	}
}

func BenchmarkCache_Get(b *testing.B) {
	c, _ := cache.New[int]("bench", enabled(time.Minute, 0))

	for i := range 1000 {
		c.Set(fmt.Sprint(i), i)
	}

	b.ResetTimer()
	for i := range b.N {
		c.Get(fmt.Sprint(i % 1000))
	}
}

func BenchmarkCache_Mixed(b *testing.B) {
	c, _ := cache.New[int]("bench", enabled(time.Minute, 4000))

	b.ResetTimer()
	for i := range b.N {
		if i%2 == 0 {
			c.Set(fmt.Sprint(i%2000), i)
		} else {
			c.Get(fmt.Sprint(i % 2000))
		}
	}
}
