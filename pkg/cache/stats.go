package cache

// Stats is a point-in-time snapshot of an instance's counters.
type Stats struct {
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	Evictions   uint64  `json:"evictions"`
	Expirations uint64  `json:"expirations"`
	HitRate     float64 `json:"hitRate"`
	TotalSize   int64   `json:"totalSize"`
	EntryCount  int     `json:"entryCount"`
}

type counters struct {
	hits        uint64
	misses      uint64
	evictions   uint64
	expirations uint64
}

// HitRate returns hits / (hits + misses), or 0 when nothing was looked up.
func HitRate(hits, misses uint64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Stats returns a copy of the instance counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:        c.counters.hits,
		Misses:      c.counters.misses,
		Evictions:   c.counters.evictions,
		Expirations: c.counters.expirations,
		HitRate:     HitRate(c.counters.hits, c.counters.misses),
		TotalSize:   c.totalSize,
		EntryCount:  len(c.items),
	}
}

// ResetStats zeroes the hit, miss, eviction and expiration counters.
func (c *Cache[V]) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters = counters{}
}
