package cache

import (
	"container/list"

	"github.com/dmitrymomot/smartcache/pkg/logger"
)

// makeRoom evicts from the back of the recency list until an entry of size
// bytes fits under MaxSize or nothing is left. Must be called with lock held.
func (c *Cache[V]) makeRoom(size int64) {
	if c.cfg.MaxSize <= 0 {
		return
	}
	for c.totalSize+size > c.cfg.MaxSize {
		el := c.recency.Back()
		if el == nil {
			return
		}
		c.evict(el)
	}
}

// shrink evicts until the running size fits max. Must be called with lock held.
func (c *Cache[V]) shrink(max int64) {
	if max <= 0 {
		return
	}
	for c.totalSize > max {
		el := c.recency.Back()
		if el == nil {
			return
		}
		c.evict(el)
	}
}

// Must be called with lock held.
func (c *Cache[V]) evict(el *list.Element) {
	e := c.unlink(el)
	c.counters.evictions++
	c.unpersist(e.key)

	if c.opts.onEvict != nil {
		c.opts.onEvict(e.key, e.value)
	}
	c.opts.logger.Debug("cache entry evicted",
		logger.Cache(c.name), logger.Key(e.key), logger.Size(e.sizeBytes))
}
