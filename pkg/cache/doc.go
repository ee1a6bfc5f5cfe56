// Package cache provides a generic, thread-safe, size-bounded cache with
// per-entry TTL, least-recently-used eviction, optional durable persistence
// and built-in hit/miss instrumentation.
//
// The cache is an optimization, never a dependency for correctness: internal
// failures (an unmeasurable value, an unavailable store) are logged and degrade
// to cache misses. Get, Set, Has and Delete never return errors.
//
// # Key Features
//
//   - Generic instances: Cache[V] stores values of a single type V
//   - Per-entry TTL with lazy expiry on access and active expiry by a sweeper
//   - Byte budget per instance with LRU eviction (least recently accessed first)
//   - Optional persistence through the Store port, namespaced by instance name
//   - Stats snapshots with hits, misses, evictions, expirations and hit rate
//   - Registry of named instances with a start/stop sweeper lifecycle
//   - Memoize helper with producer timing and opt-in single-flight
//
// # Usage
//
// Create a standalone instance:
//
//	users, err := cache.New[User]("users", cache.Config{
//		TTL:     10 * time.Minute,
//		MaxSize: 1 << 20,
//		Enabled: true,
//	})
//
//	users.Set("user:123", u)
//	if u, ok := users.Get("user:123"); ok {
//		// Use u
//	}
//
// Or construct a Registry once at process start and inject it:
//
//	reg, err := cache.NewDefaultRegistry(
//		cache.WithRegistryStore(store),
//		cache.WithRegistryLogger(log),
//	)
//	reg.StartBackground(ctx)
//	defer reg.Stop()
//
//	api, _ := reg.GetInstance(cache.NameAPI)
//	profiles, _ := cache.Register[Profile](reg, "profiles", cache.DefaultConfig())
//
// # Memoization
//
// Memoize turns a producer into a cached lookup. Producer errors are returned
// unchanged and never cached:
//
//	report, err := cache.Memoize(ctx, reports, "report:42",
//		func(ctx context.Context) (Report, error) {
//			return repo.BuildReport(ctx, 42)
//		},
//		cache.WithTTL(time.Minute),
//		cache.WithTiming(func(d time.Duration) { observe(d) }),
//	)
//
// Concurrent misses on one key each run the producer. Create the instance with
// WithSingleFlight to collapse them into a single call.
//
// Producer timings are logged with the caller's context, so attributes attached
// with logger.ContextWithAttrs show up on those records.
//
// # Size Accounting
//
// Every entry is charged the length of its JSON encoding (see JSONSizer, or
// supply WithSizer). Values that cannot be measured are charged
// DefaultEntrySize. A MaxSize of zero disables the byte budget.
//
// When a Set would push the running total over MaxSize:
//
//  1. The least recently accessed entry is identified
//  2. It is removed (and from the store, when persisting)
//  3. The eviction counter and the optional eviction callback fire
//  4. Steps repeat until the new entry fits or nothing is left
//
// A value larger than MaxSize is still stored; the cache only evicts on a
// best-effort basis and never rejects a write for capacity.
//
// # Persistence
//
// With Config.Persist set, Set, Delete, eviction and expiry are mirrored to
// the Store synchronously under the instance lock. On construction the
// instance loads its namespace, discarding entries whose TTL already elapsed.
// Backends live in the redis, mongo, pg and file packages; MemoryStore is
// provided for tests.
//
// # Thread Safety
//
// Each instance guards its entry map, recency list and running size with one
// mutex. The sweeper takes the same lock, so a sweep and a concurrent Get or
// Set never race on a key.
package cache
