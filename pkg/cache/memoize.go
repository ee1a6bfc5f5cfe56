package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrymomot/smartcache/pkg/logger"
)

// MemoOption configures a single Memoize call.
type MemoOption func(*memoOptions)

type memoOptions struct {
	ttl    *time.Duration
	timing func(time.Duration)
}

// WithTTL stores the produced value with ttl instead of the instance default.
func WithTTL(ttl time.Duration) MemoOption {
	return func(o *memoOptions) {
		o.ttl = &ttl
	}
}

// WithTiming reports how long the producer ran. It is not called on a cache hit.
func WithTiming(fn func(time.Duration)) MemoOption {
	return func(o *memoOptions) {
		o.timing = fn
	}
}

// Memoize returns the cached value for key or runs producer, stores its result
// and returns it. A producer error is returned unchanged and nothing is cached.
//
// Concurrent misses on the same key each run the producer unless the instance
// was created with WithSingleFlight. With single flight the producer receives
// the first caller's context stripped of its deadline and cancellation, so it
// runs to completion for every waiter.
func Memoize[V any](ctx context.Context, c *Cache[V], key string, producer func(context.Context) (V, error), opts ...MemoOption) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	o := &memoOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if c.flight == nil {
		return c.produce(ctx, key, producer, o)
	}

	// Waiters share one producer run, detached from the first caller's cancellation.
	flightCtx := context.WithoutCancel(ctx)
	res, err, _ := c.flight.Do(key, func() (any, error) {
		return c.produce(flightCtx, key, producer, o)
	})
	if err != nil {
		var zero V
		return zero, err
	}
	// A nil interface value comes back as a nil any.
	v, _ := res.(V)
	return v, nil
}

func (c *Cache[V]) produce(ctx context.Context, key string, producer func(context.Context) (V, error), o *memoOptions) (V, error) {
	start := time.Now()
	v, err := producer(ctx)
	elapsed := time.Since(start)

	if o.timing != nil {
		o.timing(elapsed)
	}
	if elapsed > c.opts.slowThreshold {
		c.opts.logger.WarnContext(ctx, "slow cache producer",
			logger.Cache(c.name), logger.Key(key), logger.Duration(elapsed))
	} else {
		c.opts.logger.DebugContext(ctx, "cache producer finished",
			logger.Cache(c.name), logger.Key(key), logger.Duration(elapsed))
	}

	if err != nil {
		var zero V
		return zero, err
	}

	if o.ttl != nil {
		c.SetWithTTL(key, v, *o.ttl)
	} else {
		c.Set(key, v)
	}
	return v, nil
}

// GetAs reads key from an untyped instance and converts the value to T.
// Values restored from a Store arrive as generic JSON and are re-decoded into T.
func GetAs[T any](c *Cache[any], key string) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	if t, ok := v.(T); ok {
		return t, true
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return zero, false
	}
	var t T
	if err := json.Unmarshal(raw, &t); err != nil {
		return zero, false
	}
	return t, true
}
