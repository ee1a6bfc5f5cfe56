package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/smartcache/pkg/cache"
	"github.com/dmitrymomot/smartcache/pkg/logger"
)

// Supported values of CACHE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// Settings is the process-level cache configuration read from the environment.
type Settings struct {
	Backend        string        `env:"CACHE_BACKEND" envDefault:"memory"`
	SweepInterval  time.Duration `env:"CACHE_SWEEP_INTERVAL" envDefault:"60s"`
	PersistTimeout time.Duration `env:"CACHE_PERSIST_TIMEOUT" envDefault:"5s"`
	SlowThreshold  time.Duration `env:"CACHE_SLOW_THRESHOLD" envDefault:"1s"`
	InstancesFile  string        `env:"CACHE_INSTANCES_FILE"`

	Env       string `env:"CACHE_ENV" envDefault:"production"`
	Service   string `env:"CACHE_SERVICE" envDefault:"smartcache"`
	LogLevel  string `env:"CACHE_LOG_LEVEL"`
	LogFormat string `env:"CACHE_LOG_FORMAT"`

	Default  Instance `envPrefix:"CACHE_DEFAULT_"`
	API      Instance `envPrefix:"CACHE_API_"`
	Page     Instance `envPrefix:"CACHE_PAGE_"`
	UserData Instance `envPrefix:"CACHE_USER_DATA_"`
}

// Instance overrides the built-in configuration of one pre-registered instance.
// Unset fields keep the built-in value.
type Instance struct {
	TTL     *time.Duration `env:"TTL"`
	MaxSize *int64         `env:"MAX_SIZE"`
	Enabled *bool          `env:"ENABLED"`
	Persist *bool          `env:"PERSIST"`
}

// Update converts the overrides into a cache.ConfigUpdate.
func (i Instance) Update() cache.ConfigUpdate {
	return cache.ConfigUpdate{
		TTL:     i.TTL,
		MaxSize: i.MaxSize,
		Enabled: i.Enabled,
		Persist: i.Persist,
	}
}

// Validate checks the backend name and the per-instance overrides.
func (s Settings) Validate() error {
	switch s.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendMongo, BackendPostgres, BackendS3:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, s.Backend)
	}
	for name, cfg := range s.InstanceConfigs() {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("instance %q: %w", name, err)
		}
	}
	if _, err := s.logLevel(); err != nil {
		return err
	}
	switch logger.Format(s.LogFormat) {
	case "", logger.FormatJSON, logger.FormatText:
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidLogging, s.LogFormat)
	}
	return nil
}

func (s Settings) logLevel() (*slog.Level, error) {
	if s.LogLevel == "" {
		return nil, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return nil, fmt.Errorf("%w: log level %q", ErrInvalidLogging, s.LogLevel)
	}
	return &lvl, nil
}

// LoggerOptions returns the logger.New options for CACHE_ENV and CACHE_SERVICE,
// with CACHE_LOG_LEVEL and CACHE_LOG_FORMAT applied on top when set.
// Call Validate first; invalid level or format values are ignored here.
func (s Settings) LoggerOptions() []logger.Option {
	opts := []logger.Option{logger.WithEnvironment(s.Env, s.Service)}
	if lvl, err := s.logLevel(); err == nil && lvl != nil {
		opts = append(opts, logger.WithLevel(*lvl))
	}
	switch f := logger.Format(s.LogFormat); f {
	case logger.FormatJSON, logger.FormatText:
		opts = append(opts, logger.WithFormat(f))
	}
	return opts
}

// Durable reports whether the selected backend outlives the process.
func (s Settings) Durable() bool {
	return s.Backend != BackendMemory
}

// InstanceConfigs returns cache.DefaultConfigs with the environment overrides applied.
func (s Settings) InstanceConfigs() map[string]cache.Config {
	overrides := map[string]Instance{
		cache.NameDefault:  s.Default,
		cache.NameAPI:      s.API,
		cache.NamePage:     s.Page,
		cache.NameUserData: s.UserData,
	}
	out := cache.DefaultConfigs()
	for name, cfg := range out {
		out[name] = overrides[name].Update().Apply(cfg)
	}
	return out
}
