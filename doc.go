// Package smartcache is an in-process cache engine with named instances,
// per-entry TTL, LRU eviction under a byte budget and optional persistence
// to Redis, MongoDB, PostgreSQL, the local filesystem or S3.
//
// The building blocks live in pkg/cache. This package wires them to the
// environment: Open reads config.Settings, connects the backend named by
// CACHE_BACKEND, registers the built-in instances (default, api, page,
// user-data) plus any declared in CACHE_INSTANCES_FILE, and starts the
// expiry sweeper.
//
// Basic Usage:
//
//	var settings config.Settings
//	if err := config.Load(&settings); err != nil {
//		return err
//	}
//
//	engine, err := smartcache.Open(ctx, settings,
//		smartcache.WithLogger(log),
//		smartcache.WithPrometheus(prometheus.DefaultRegisterer),
//	)
//	if err != nil {
//		return err
//	}
//	defer engine.Close()
//
//	api, _ := engine.Cache(cache.NameAPI)
//	api.Set("GET /users", users)
//
// Typed instances are registered on the engine's registry:
//
//	profiles, err := cache.Register[Profile](engine.Registry(), "profiles", cache.DefaultConfig())
//
// Readiness checks can call Engine.Healthcheck, which pings the backend.
package smartcache
