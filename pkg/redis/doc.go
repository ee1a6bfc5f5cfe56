// Package redis provides a Redis-backed cache.Store together with helpers for
// connecting to a Redis server and probing its health.
//
// The package wraps the go-redis client and adds:
//
//   - Robust `Connect` which retries the connection using the supplied
//     configuration.
//   - `Store`, which keeps each cache namespace in one hash
//     ("<prefix>:<namespace>") with one JSON-encoded field per entry.
//   - Health-check helpers to integrate Redis into liveness / readiness probes.
//
// Configuration is described by the `Config` struct whose fields can be
// populated from environment variables via github.com/caarlos0/env.
//
// # Usage
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    // handle error, probably terminate the application
//	}
//	defer client.Close()
//
//	store := redis.NewStoreWithConfig(client, cfg)
//	reg, err := cache.NewDefaultRegistry(cache.WithRegistryStore(store))
//
// Register a health-check in your observability stack:
//
//	checker := redis.Healthcheck(client)
//	if err := checker(ctx); err != nil {
//	    // redis is not healthy
//	}
//
// # Errors
//
// The package defines several sentinel errors (e.g. ErrRedisNotReady) that wrap
// the underlying go-redis errors using errors.Join. This makes it easy to
// compare and unwrap.
package redis
