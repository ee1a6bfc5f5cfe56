package cache

import (
	"fmt"
	"time"
)

// Names of the instances pre-registered by NewDefaultRegistry.
const (
	NameDefault  = "default"
	NameAPI      = "api"
	NamePage     = "page"
	NameUserData = "user-data"
)

const (
	// DefaultTTL is used when a Config is built with DefaultConfig.
	DefaultTTL = 5 * time.Minute
	// DefaultMaxSize is the byte budget of the "default" instance (50 MiB).
	DefaultMaxSize int64 = 50 << 20
)

// Config controls a single cache instance.
type Config struct {
	// TTL is the lifetime applied by Set. Zero or negative entry TTLs never expire.
	TTL time.Duration
	// MaxSize is the byte budget for the sum of entry sizes. Zero means unbounded.
	MaxSize int64
	// Enabled switches the instance on. A disabled instance misses every Get and ignores Set.
	Enabled bool
	// Persist mirrors Set and Delete to the attached Store.
	Persist bool
}

// DefaultConfig returns an enabled, non-persistent config with the default TTL and size.
func DefaultConfig() Config {
	return Config{
		TTL:     DefaultTTL,
		MaxSize: DefaultMaxSize,
		Enabled: true,
	}
}

// DefaultConfigs returns the configuration of every pre-registered instance.
func DefaultConfigs() map[string]Config {
	return map[string]Config{
		NameDefault: DefaultConfig(),
		NameAPI: {
			TTL:     2 * time.Minute,
			MaxSize: 10 << 20,
			Enabled: true,
		},
		NamePage: {
			TTL:     10 * time.Minute,
			MaxSize: 20 << 20,
			Enabled: true,
		},
		NameUserData: {
			TTL:     30 * time.Minute,
			MaxSize: 5 << 20,
			Enabled: true,
			Persist: true,
		},
	}
}

// Validate rejects negative durations and sizes instead of clamping them.
func (c Config) Validate() error {
	if c.TTL < 0 {
		return fmt.Errorf("%w: negative ttl %s", ErrInvalidConfig, c.TTL)
	}
	if c.MaxSize < 0 {
		return fmt.Errorf("%w: negative max size %d", ErrInvalidConfig, c.MaxSize)
	}
	return nil
}

// ConfigUpdate is a partial Config. Nil fields are left unchanged.
type ConfigUpdate struct {
	TTL     *time.Duration
	MaxSize *int64
	Enabled *bool
	Persist *bool
}

// Apply returns c with the non-nil fields of u applied.
func (u ConfigUpdate) Apply(c Config) Config {
	if u.TTL != nil {
		c.TTL = *u.TTL
	}
	if u.MaxSize != nil {
		c.MaxSize = *u.MaxSize
	}
	if u.Enabled != nil {
		c.Enabled = *u.Enabled
	}
	if u.Persist != nil {
		c.Persist = *u.Persist
	}
	return c
}
