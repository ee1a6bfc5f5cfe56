package cache

import (
	"log/slog"
	"time"
)

// Option configures a cache instance.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	now            func() time.Time
	sizer          Sizer
	store          Store
	onEvict        func(key string, value any)
	singleFlight   bool
	slowThreshold  time.Duration
	persistTimeout time.Duration
}

func defaultOptions() *options {
	return &options{
		logger:         slog.Default(),
		now:            time.Now,
		sizer:          JSONSizer,
		slowThreshold:  time.Second,
		persistTimeout: 5 * time.Second,
	}
}

// WithLogger sets the logger used for persistence and sweep diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces time.Now for TTL and access bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithSizer overrides the size estimator.
func WithSizer(s Sizer) Option {
	return func(o *options) {
		if s != nil {
			o.sizer = s
		}
	}
}

// WithStore attaches the durable store used when Config.Persist is set.
func WithStore(s Store) Option {
	return func(o *options) {
		if s != nil {
			o.store = s
		}
	}
}

// WithEvictCallback registers fn to run for every entry evicted to free capacity.
// It runs with the instance lock held and must not call back into the cache.
func WithEvictCallback(fn func(key string, value any)) Option {
	return func(o *options) {
		o.onEvict = fn
	}
}

// WithSingleFlight makes Memoize collapse concurrent misses on the same key into
// one producer call. Off by default: without it every concurrent miss runs the producer.
// The shared producer call keeps the values of the first caller's context but
// not its deadline or cancellation.
func WithSingleFlight() Option {
	return func(o *options) {
		o.singleFlight = true
	}
}

// WithSlowThreshold sets the producer duration above which Memoize logs a warning.
func WithSlowThreshold(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.slowThreshold = d
		}
	}
}

// WithPersistTimeout bounds every call made to the Store.
func WithPersistTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.persistTimeout = d
		}
	}
}
