package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/smartcache/pkg/cache"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errStoreDown = errors.New("store down")

// failingStore fails every call, like a backend that is out of quota.
type failingStore struct{}

func (failingStore) Load(context.Context, string) (map[string]cache.SerializedEntry, error) {
	return nil, errStoreDown
}

func (failingStore) Save(context.Context, string, string, cache.SerializedEntry) error {
	return errStoreDown
}

func (failingStore) Remove(context.Context, string, string) error { return errStoreDown }

func (failingStore) Clear(context.Context, string) error { return errStoreDown }

// panickingStore panics on Remove, which the sweeper must survive.
type panickingStore struct {
	*cache.MemoryStore
}

func (panickingStore) Remove(context.Context, string, string) error {
	panic("remove exploded")
}

// flakyRemoveStore panics on the first Remove only.
type flakyRemoveStore struct {
	*cache.MemoryStore
	calls atomic.Int32
}

func (s *flakyRemoveStore) Remove(ctx context.Context, namespace, key string) error {
	if s.calls.Add(1) == 1 {
		panic("first remove exploded")
	}
	return s.MemoryStore.Remove(ctx, namespace, key)
}

func enabled(ttl time.Duration, maxSize int64) cache.Config {
	return cache.Config{TTL: ttl, MaxSize: maxSize, Enabled: true}
}
