// Package pg provides a PostgreSQL-backed cache.Store on top of the pgx/v5
// driver, together with connection pooling, schema migrations and health
// checks.
//
// # Architecture
//
// The package exposes four cooperating building blocks:
//
//   - Config – populated from environment variables via
//     github.com/caarlos0/env. It controls connection pool limits,
//     health-check cadence and the goose version table.
//
//   - Connect – opens a *pgxpool.Pool based on Config, retrying with a
//     growing delay until the database becomes available.
//
//   - Migrate – applies the embedded goose migrations that create the
//     cache_entries table.
//
//   - Store – implements cache.Store with one row per entry, keyed by
//     (namespace, cache_key), and upserts on Save.
//
// # Usage
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		panic(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//		panic(err)
//	}
//
//	reg, err := cache.NewDefaultRegistry(cache.WithRegistryStore(pg.NewStore(pool)))
//
//	health := pg.Healthcheck(pool)
//
// Entry values are stored as JSONB, so they can be inspected with ordinary
// SQL while the cache is running.
package pg
