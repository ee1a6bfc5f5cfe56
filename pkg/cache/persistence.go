package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/dmitrymomot/smartcache/pkg/logger"
)

// Store is the durable key-value surface a cache instance mirrors itself to.
// Every method is scoped by namespace, which is the instance name.
type Store interface {
	// Load returns every entry saved under namespace, keyed by cache key.
	Load(ctx context.Context, namespace string) (map[string]SerializedEntry, error)
	// Save inserts or replaces one entry.
	Save(ctx context.Context, namespace, key string, e SerializedEntry) error
	// Remove deletes one entry. Removing a missing key is not an error.
	Remove(ctx context.Context, namespace, key string) error
	// Clear deletes every entry under namespace.
	Clear(ctx context.Context, namespace string) error
}

// SerializedEntry is the wire form of a cache entry. Timestamps are epoch
// milliseconds and TTL is in milliseconds.
type SerializedEntry struct {
	Key            string          `json:"key"`
	Value          json.RawMessage `json:"value"`
	CreatedAt      int64           `json:"createdAt"`
	TTL            int64           `json:"ttl"`
	AccessCount    uint64          `json:"accessCount"`
	LastAccessedAt int64           `json:"lastAccessedAt"`
	SizeBytes      int64           `json:"sizeBytes"`
}

// Expired reports whether the entry outlived its TTL at now.
func (e SerializedEntry) Expired(now time.Time) bool {
	return e.TTL > 0 && now.UnixMilli()-e.CreatedAt > e.TTL
}

// MemoryStore is a Store kept in process memory. It survives instance
// re-creation within one process, which makes it the store of choice in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]SerializedEntry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]SerializedEntry)}
}

func (s *MemoryStore) Load(_ context.Context, namespace string) (map[string]SerializedEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.data[namespace]), nil
}

func (s *MemoryStore) Save(_ context.Context, namespace, key string, e SerializedEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.data[namespace]
	if !ok {
		ns = make(map[string]SerializedEntry)
		s.data[namespace] = ns
	}
	ns[key] = e
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[namespace], key)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, namespace)
	return nil
}

// Len returns the number of entries saved under namespace.
func (s *MemoryStore) Len(namespace string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[namespace])
}

func (c *Cache[V]) storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.opts.persistTimeout)
}

func (c *Cache[V]) persisting() bool {
	return c.cfg.Persist && c.opts.store != nil
}

// Must be called with lock held.
func (c *Cache[V]) persist(e *entry[V]) {
	if !c.persisting() {
		return
	}
	se, err := e.serialize()
	if err != nil {
		c.opts.logger.Warn("cache entry not persisted",
			logger.Cache(c.name), logger.Key(e.key), logger.Error(err))
		// A replaced key must not leave its previous value behind.
		c.unpersist(e.key)
		return
	}
	ctx, cancel := c.storeContext()
	defer cancel()
	if err := c.opts.store.Save(ctx, c.name, e.key, se); err != nil {
		c.opts.logger.Error("failed to persist cache entry",
			logger.Cache(c.name), logger.Key(e.key), logger.Error(errors.Join(ErrPersistence, err)))
	}
}

// Must be called with lock held.
func (c *Cache[V]) unpersist(key string) {
	if !c.persisting() {
		return
	}
	ctx, cancel := c.storeContext()
	defer cancel()
	if err := c.opts.store.Remove(ctx, c.name, key); err != nil {
		c.opts.logger.Error("failed to remove persisted cache entry",
			logger.Cache(c.name), logger.Key(key), logger.Error(errors.Join(ErrPersistence, err)))
	}
}

// restore loads the durable namespace into memory, dropping entries that are
// expired by wall clock or cannot be decoded. Must be called before the
// instance is shared.
func (c *Cache[V]) restore() {
	if !c.persisting() {
		return
	}
	ctx, cancel := c.storeContext()
	defer cancel()

	saved, err := c.opts.store.Load(ctx, c.name)
	if err != nil {
		c.opts.logger.Error("failed to load persisted cache entries",
			logger.Cache(c.name), logger.Error(errors.Join(ErrPersistence, err)))
		return
	}

	now := c.opts.now()
	live := make([]*entry[V], 0, len(saved))
	for key, se := range saved {
		if se.Key == "" {
			se.Key = key
		}
		if se.Expired(now) {
			c.unpersist(key)
			continue
		}
		e, err := deserialize[V](se)
		if err != nil {
			c.opts.logger.Warn("dropping undecodable persisted entry",
				logger.Cache(c.name), logger.Key(key), logger.Error(err))
			c.unpersist(key)
			continue
		}
		live = append(live, e)
	}

	// Oldest access first so the most recent entry ends up at the front.
	sort.SliceStable(live, func(i, j int) bool {
		if live[i].lastAccessedAt.Equal(live[j].lastAccessedAt) {
			return live[i].createdAt.Before(live[j].createdAt)
		}
		return live[i].lastAccessedAt.Before(live[j].lastAccessedAt)
	})
	for _, e := range live {
		e.elem = c.recency.PushFront(e)
		c.items[e.key] = e.elem
		c.totalSize += e.sizeBytes
	}
	c.shrink(c.cfg.MaxSize)

	c.opts.logger.Debug("restored persisted cache entries",
		logger.Cache(c.name), logger.Count(len(c.items)), slog.Int("discarded", len(saved)-len(live)))
}
