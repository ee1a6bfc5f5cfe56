package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/smartcache/pkg/cache"
)

func TestMemoize(t *testing.T) {
	ctx := context.Background()

	t.Run("miss runs producer and caches", func(t *testing.T) {
		c, err := cache.New[string]("memo", enabled(time.Minute, 0))
		require.NoError(t, err)

		var calls int
		producer := func(context.Context) (string, error) {
			calls++
			return "computed", nil
		}

		val, err := cache.Memoize(ctx, c, "k", producer)
		require.NoError(t, err)
		assert.Equal(t, "computed", val)

		val, err = cache.Memoize(ctx, c, "k", producer)
		require.NoError(t, err)
		assert.Equal(t, "computed", val)
		assert.Equal(t, 1, calls)

		stats := c.Stats()
		assert.Equal(t, uint64(1), stats.Hits)
		assert.Equal(t, uint64(1), stats.Misses)
	})

	t.Run("producer error propagates and is not cached", func(t *testing.T) {
		c, err := cache.New[int]("memo", enabled(time.Minute, 0))
		require.NoError(t, err)

		boom := errors.New("upstream unavailable")
		val, err := cache.Memoize(ctx, c, "k", func(context.Context) (int, error) {
			return 42, boom
		})
		require.ErrorIs(t, err, boom)
		assert.Same(t, boom, err)
		assert.Zero(t, val)
		assert.False(t, c.Has("k"))

		val, err = cache.Memoize(ctx, c, "k", func(context.Context) (int, error) {
			return 7, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 7, val)
	})

	t.Run("custom ttl", func(t *testing.T) {
		clock := newFakeClock()
		c, err := cache.New[int]("memo", enabled(time.Hour, 0), cache.WithClock(clock.Now))
		require.NoError(t, err)

		_, err = cache.Memoize(ctx, c, "k", func(context.Context) (int, error) { return 1, nil },
			cache.WithTTL(time.Second))
		require.NoError(t, err)

		clock.Advance(2 * time.Second)
		assert.False(t, c.Has("k"))
	})

	t.Run("timing side channel", func(t *testing.T) {
		c, err := cache.New[int]("memo", enabled(time.Minute, 0))
		require.NoError(t, err)

		var measured []time.Duration
		timing := cache.WithTiming(func(d time.Duration) { measured = append(measured, d) })
		producer := func(context.Context) (int, error) {
			time.Sleep(5 * time.Millisecond)
			return 1, nil
		}

		_, err = cache.Memoize(ctx, c, "k", producer, timing)
		require.NoError(t, err)
		_, err = cache.Memoize(ctx, c, "k", producer, timing)
		require.NoError(t, err)

		require.Len(t, measured, 1, "hits are not timed")
		assert.GreaterOrEqual(t, measured[0], 5*time.Millisecond)
	})

	t.Run("disabled instance always runs producer", func(t *testing.T) {
		c, err := cache.New[int]("memo", cache.Config{})
		require.NoError(t, err)

		var calls int
		for range 3 {
			val, err := cache.Memoize(ctx, c, "k", func(context.Context) (int, error) {
				calls++
				return calls, nil
			})
			require.NoError(t, err)
			assert.Equal(t, calls, val)
		}
		assert.Equal(t, 3, calls)
	})
}

func TestMemoize_Concurrency(t *testing.T) {
	ctx := context.Background()

	t.Run("concurrent misses each run the producer", func(t *testing.T) {
		c, err := cache.New[int]("memo", enabled(time.Minute, 0))
		require.NoError(t, err)

		var calls atomic.Int32
		var started sync.WaitGroup
		started.Add(2)
		release := make(chan struct{})

		producer := func(context.Context) (int, error) {
			calls.Add(1)
			started.Done()
			<-release
			return 1, nil
		}

		var wg sync.WaitGroup
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = cache.Memoize(ctx, c, "k", producer)
			}()
		}

		started.Wait()
		close(release)
		wg.Wait()

		assert.Equal(t, int32(2), calls.Load())
		assert.Equal(t, 1, c.Len())
	})

	t.Run("single flight collapses concurrent misses", func(t *testing.T) {
		c, err := cache.New[int]("memo", enabled(time.Minute, 0), cache.WithSingleFlight())
		require.NoError(t, err)

		var calls atomic.Int32
		started := make(chan struct{})
		release := make(chan struct{})

		producer := func(context.Context) (int, error) {
			if calls.Add(1) == 1 {
				close(started)
			}
			<-release
			return 9, nil
		}

		results := make(chan int, 2)
		go func() {
			v, _ := cache.Memoize(ctx, c, "k", producer)
			results <- v
		}()
		<-started
		go func() {
			v, _ := cache.Memoize(ctx, c, "k", producer)
			results <- v
		}()

		time.Sleep(50 * time.Millisecond)
		close(release)

		assert.Equal(t, 9, <-results)
		assert.Equal(t, 9, <-results)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("single flight handles nil interface values", func(t *testing.T) {
		anyCache, err := cache.New[any]("memo-any", enabled(time.Minute, 0), cache.WithSingleFlight())
		require.NoError(t, err)

		var v any
		require.NotPanics(t, func() {
			v, err = cache.Memoize(ctx, anyCache, "k", func(context.Context) (any, error) { return nil, nil })
		})
		require.NoError(t, err)
		assert.Nil(t, v)

		errCache, err := cache.New[error]("memo-err", enabled(time.Minute, 0), cache.WithSingleFlight())
		require.NoError(t, err)

		var got error
		require.NotPanics(t, func() {
			got, err = cache.Memoize(ctx, errCache, "k", func(context.Context) (error, error) { return nil, nil })
		})
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("single flight detaches the producer from caller cancellation", func(t *testing.T) {
		c, err := cache.New[string]("memo", enabled(time.Minute, 0), cache.WithSingleFlight())
		require.NoError(t, err)

		type tenantKey struct{}
		cctx, cancel := context.WithCancel(context.WithValue(ctx, tenantKey{}, "acme"))
		cancel()

		v, err := cache.Memoize(cctx, c, "k", func(pctx context.Context) (string, error) {
			if err := pctx.Err(); err != nil {
				return "", err
			}
			return pctx.Value(tenantKey{}).(string), nil
		})
		require.NoError(t, err)
		assert.Equal(t, "acme", v)
		assert.True(t, c.Has("k"))
	})

	t.Run("single flight shares errors without caching", func(t *testing.T) {
		c, err := cache.New[int]("memo", enabled(time.Minute, 0), cache.WithSingleFlight())
		require.NoError(t, err)

		boom := errors.New("boom")
		_, err = cache.Memoize(ctx, c, "k", func(context.Context) (int, error) { return 0, boom })
		require.ErrorIs(t, err, boom)
		assert.False(t, c.Has("k"))
	})
}
