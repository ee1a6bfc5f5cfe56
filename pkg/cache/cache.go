package cache

import (
	"container/list"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/smartcache/pkg/logger"
)

// Cache is a named, size-bounded, TTL-aware cache instance holding values of type V.
// All methods are safe for concurrent use; one mutex guards the entry map,
// the recency list and the running size together.
type Cache[V any] struct {
	name string
	opts *options

	mu        sync.Mutex
	cfg       Config
	items     map[string]*list.Element
	recency   *list.List // front is most recently accessed
	totalSize int64
	counters  counters

	flight *singleflight.Group
}

// New creates a cache instance. When cfg.Persist is set the instance is
// populated from the store before New returns.
func New[V any](name string, cfg Config, opts ...Option) (*Cache[V], error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if cfg.Persist && o.store == nil {
		return nil, ErrNoStore
	}

	c := &Cache[V]{
		name:    name,
		opts:    o,
		cfg:     cfg,
		items:   make(map[string]*list.Element),
		recency: list.New(),
	}
	if o.singleFlight {
		c.flight = &singleflight.Group{}
	}

	c.mu.Lock()
	c.restore()
	c.mu.Unlock()

	return c, nil
}

// Name returns the instance name, which is also its persistence namespace.
func (c *Cache[V]) Name() string {
	return c.name
}

// Config returns a copy of the current configuration.
func (c *Cache[V]) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Set stores value under key with the configured TTL.
func (c *Cache[V]) Set(key string, value V) bool {
	c.mu.Lock()
	ttl := c.cfg.TTL
	c.mu.Unlock()
	return c.SetWithTTL(key, value, ttl)
}

// SetWithTTL stores value under key, replacing any previous entry.
// It returns false without touching state when the instance is disabled.
// Entries are evicted least-recently-accessed first until the new one fits;
// a value larger than MaxSize is still stored once everything else is gone.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cfg.Enabled {
		return false
	}

	size, err := c.opts.sizer(value)
	if err != nil || size < 0 {
		c.opts.logger.Warn("cache entry size estimate failed, using default",
			logger.Cache(c.name), logger.Key(key), logger.Size(DefaultEntrySize), logger.Error(err))
		size = DefaultEntrySize
	}

	if el, ok := c.items[key]; ok {
		c.unlink(el)
	}
	c.makeRoom(size)

	now := c.opts.now()
	e := &entry[V]{
		key:            key,
		value:          value,
		createdAt:      now,
		ttl:            ttl,
		lastAccessedAt: now,
		sizeBytes:      size,
	}
	e.elem = c.recency.PushFront(e)
	c.items[key] = e.elem
	c.totalSize += size

	c.persist(e)
	return true
}

// Get returns the value stored under key. Absent, expired and disabled
// lookups count as misses; an expired entry is removed as a side effect.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	if !c.cfg.Enabled {
		c.counters.misses++
		return zero, false
	}

	el, ok := c.items[key]
	if !ok {
		c.counters.misses++
		return zero, false
	}

	now := c.opts.now()
	e := el.Value.(*entry[V])
	if e.expired(now) {
		c.expire(el)
		c.counters.misses++
		return zero, false
	}

	e.touch(now)
	c.recency.MoveToFront(el)
	c.counters.hits++
	return e.value, true
}

// Has reports whether key holds a live entry without touching access statistics.
func (c *Cache[V]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cfg.Enabled {
		return false
	}
	el, ok := c.items[key]
	if !ok {
		return false
	}
	if el.Value.(*entry[V]).expired(c.opts.now()) {
		c.expire(el)
		return false
	}
	return true
}

// Delete removes key and reports whether it was present.
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	c.unlink(el)
	c.unpersist(key)
	return true
}

// Clear removes every entry and, when persisting, the durable namespace.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.recency.Init()
	c.totalSize = 0

	if c.persisting() {
		c.clearDurable()
	}
}

// clearDurable drops the durable namespace. Must be called with lock held.
func (c *Cache[V]) clearDurable() {
	ctx, cancel := c.storeContext()
	defer cancel()
	if err := c.opts.store.Clear(ctx, c.name); err != nil {
		c.opts.logger.Error("failed to clear persisted cache entries",
			logger.Cache(c.name), logger.Error(errors.Join(ErrPersistence, err)))
	}
}

// Keys returns every stored key, most recently accessed first. Logically
// expired entries that were not swept yet are included; use Has to filter.
func (c *Cache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, c.recency.Len())
	for el := c.recency.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry[V]).key)
	}
	return keys
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recency.Len()
}

// UpdateConfig applies a partial configuration change. Existing entries are
// kept; lowering MaxSize evicts down to the new bound before returning.
// Turning Persist on writes every live entry to the store; turning it off
// clears the durable namespace so stale copies cannot be restored later.
func (c *Cache[V]) UpdateConfig(u ConfigUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := u.Apply(c.cfg)
	if err := next.Validate(); err != nil {
		return err
	}
	if next.Persist && c.opts.store == nil {
		return ErrNoStore
	}

	was := c.persisting()
	if was && !next.Persist {
		c.clearDurable()
	}
	c.cfg = next
	c.shrink(next.MaxSize)

	if !was && c.persisting() {
		now := c.opts.now()
		for el := c.recency.Back(); el != nil; el = el.Prev() {
			if e := el.Value.(*entry[V]); !e.expired(now) {
				c.persist(e)
			}
		}
	}
	return nil
}

// DeleteExpired removes every entry whose TTL has elapsed and returns how
// many were removed. The Registry sweeper calls it on a timer.
func (c *Cache[V]) DeleteExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.now()
	removed := 0
	for el := c.recency.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*entry[V]).expired(now) && c.sweepEntry(el) {
			removed++
		}
		el = prev
	}
	return removed
}

// sweepEntry expires one entry and reports whether it left memory. A panic is
// logged and does not stop the caller's scan. Must be called with lock held.
func (c *Cache[V]) sweepEntry(el *list.Element) (removed bool) {
	key := el.Value.(*entry[V]).key
	defer func() {
		if rec := recover(); rec != nil {
			c.opts.logger.Error("cache sweep failed for entry",
				logger.Cache(c.name), logger.Key(key), logger.Error(fmt.Errorf("panic during sweep: %v", rec)))
			_, still := c.items[key]
			removed = !still
		}
	}()
	c.expire(el)
	return true
}

// Must be called with lock held.
func (c *Cache[V]) expire(el *list.Element) {
	e := c.unlink(el)
	c.counters.expirations++
	c.unpersist(e.key)
}

// unlink drops the entry from memory and the running size. Must be called with lock held.
func (c *Cache[V]) unlink(el *list.Element) *entry[V] {
	e := el.Value.(*entry[V])
	c.recency.Remove(el)
	delete(c.items, e.key)
	c.totalSize -= e.sizeBytes
	return e
}
