// Package config loads the cache engine configuration from the environment
// and from an optional YAML file of application-defined instances.
//
// Environment parsing wraps `github.com/joho/godotenv` and
// `github.com/caarlos0/env/v11`. Each configuration type is parsed once and
// cached for the lifetime of the process; ResetCache and ForceReload exist
// for tests.
//
// # Settings
//
// Settings holds the engine-wide knobs:
//
//	CACHE_BACKEND          memory | file | redis | mongo | postgres | s3 (default memory)
//	CACHE_SWEEP_INTERVAL   how often expired entries are purged (default 60s)
//	CACHE_PERSIST_TIMEOUT  deadline for a single store call (default 5s)
//	CACHE_SLOW_THRESHOLD   producer duration logged as slow (default 1s)
//	CACHE_INSTANCES_FILE   optional YAML file with extra instances
//
// The four built-in instances can be tuned with CACHE_<NAME>_TTL,
// CACHE_<NAME>_MAX_SIZE, CACHE_<NAME>_ENABLED and CACHE_<NAME>_PERSIST where
// NAME is DEFAULT, API, PAGE or USER_DATA. Unset variables keep the built-in
// values from cache.DefaultConfigs.
//
//	var s config.Settings
//	if err := config.Load(&s); err != nil {
//		return err
//	}
//	if err := s.Validate(); err != nil {
//		return err
//	}
//	cfgs := s.InstanceConfigs()
//
// # Instances File
//
// LoadInstances reads extra instances:
//
//	instances:
//	  - name: sessions
//	    ttl: 15m
//	    max_size: 1048576
//	    persist: true
//
// # Error Handling
//
// The package defines sentinel errors that can be compared with `errors.Is`:
//
//   - `ErrParsingConfig`    – failed to parse env vars into struct.
//   - `ErrConfigNotLoaded`  – requested config type has not been loaded yet.
//   - `ErrNilPointer`       – nil pointer passed to `Load`/`MustLoad`.
//   - `ErrUnknownBackend`   – CACHE_BACKEND names no supported store.
//   - `ErrInvalidInstances` – the instances file is unreadable or malformed.
package config
