// Package mongo provides MongoDB connection management and a MongoDB-backed
// cache.Store.
//
// Key features:
//   - Environment-driven configuration
//   - Built-in retry logic for transient connection failures
//   - Store keeping one document per cache entry, keyed by {ns, key}
//   - Health check integration for readiness probes
//
// # Usage
//
//	client, err := mongo.New(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Disconnect(context.Background())
//
//	store, err := mongo.NewStoreFromConfig(ctx, client, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	reg, err := cache.NewDefaultRegistry(cache.WithRegistryStore(store))
//
//	health := mongo.Healthcheck(client)
//
// # Document Layout
//
//	{
//	  "_id": {"ns": "user-data", "key": "user:42"},
//	  "value": "{\"name\":\"ada\"}",
//	  "created_at": 1735689600000,
//	  "ttl": 1800000,
//	  "access_count": 3,
//	  "last_accessed_at": 1735689700000,
//	  "size_bytes": 14
//	}
//
// Values are kept as JSON text so they decode exactly as they were written.
// The collection carries an index on "_id.ns" for namespace loads and clears.
package mongo
