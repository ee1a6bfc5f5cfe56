package smartcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/smartcache/pkg/cache"
	"github.com/dmitrymomot/smartcache/pkg/config"
	"github.com/dmitrymomot/smartcache/pkg/file"
	"github.com/dmitrymomot/smartcache/pkg/logger"
	"github.com/dmitrymomot/smartcache/pkg/metrics"
	"github.com/dmitrymomot/smartcache/pkg/mongo"
	"github.com/dmitrymomot/smartcache/pkg/pg"
	"github.com/dmitrymomot/smartcache/pkg/redis"
)

// Engine wires a Registry to the durable backend selected by config.Settings
// and runs its sweeper.
type Engine struct {
	registry *cache.Registry
	metrics  *metrics.Metrics
	logger   *slog.Logger
	backend  string

	mu     sync.Mutex
	closed bool

	store   cache.Store
	check   func(context.Context) error
	closers []func() error
}

// Option configures Open.
type Option func(*engineOptions)

type engineOptions struct {
	logger     *slog.Logger
	logOutput  io.Writer
	store      cache.Store
	registerer prometheus.Registerer
	instance   []cache.Option
}

// WithLogger replaces the logger built from the CACHE_ENV and CACHE_LOG_*
// settings. It is decorated so attributes from logger.ContextWithAttrs still
// reach every record.
func WithLogger(l *slog.Logger) Option {
	return func(o *engineOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLogOutput sets where the settings-built logger writes. Defaults to stdout.
func WithLogOutput(w io.Writer) Option {
	return func(o *engineOptions) {
		o.logOutput = w
	}
}

// WithStore bypasses CACHE_BACKEND and uses s as the durable store.
func WithStore(s cache.Store) Option {
	return func(o *engineOptions) {
		o.store = s
	}
}

// WithPrometheus registers cache metrics with reg.
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(o *engineOptions) {
		o.registerer = reg
	}
}

// WithInstanceOptions adds options applied to every instance the engine creates.
func WithInstanceOptions(opts ...cache.Option) Option {
	return func(o *engineOptions) {
		o.instance = append(o.instance, opts...)
	}
}

// Open connects the configured backend, registers the built-in instances and
// the ones declared in CACHE_INSTANCES_FILE, and starts the sweeper. The
// sweeper stops when ctx is done or Close is called.
func Open(ctx context.Context, s config.Settings, opts ...Option) (*Engine, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	o := &engineOptions{}
	for _, opt := range opts {
		opt(o)
	}
	base := logger.Decorate(o.logger)
	if base == nil {
		base = logger.New(append(s.LoggerOptions(), logger.WithOutput(o.logOutput))...)
	}
	log := base.With(logger.Component("smartcache"))

	e := &Engine{logger: log, backend: s.Backend}
	if o.store != nil {
		e.store = o.store
		e.backend = "custom"
	} else if err := e.openBackend(ctx, s); err != nil {
		return nil, err
	}

	instanceOpts := []cache.Option{
		cache.WithSlowThreshold(s.SlowThreshold),
		cache.WithPersistTimeout(s.PersistTimeout),
	}
	instanceOpts = append(instanceOpts, o.instance...)

	regOpts := []cache.RegistryOption{
		cache.WithRegistryLogger(log),
		cache.WithSweepInterval(s.SweepInterval),
		cache.WithInstanceOptions(instanceOpts...),
	}
	if e.store != nil {
		regOpts = append(regOpts, cache.WithRegistryStore(e.store))
	}
	e.registry = cache.NewRegistry(regOpts...)

	if err := e.registerInstances(s); err != nil {
		_ = e.closeBackend()
		return nil, err
	}

	if o.registerer != nil {
		e.metrics = metrics.NewMetrics(o.registerer, e.registry)
	}

	e.registry.StartBackground(ctx)
	log.InfoContext(ctx, "cache engine started",
		logger.Backend(e.backend), logger.Count(len(e.registry.Names())))
	return e, nil
}

func (e *Engine) registerInstances(s config.Settings) error {
	for name, cfg := range s.InstanceConfigs() {
		if err := e.register(name, cfg); err != nil {
			return err
		}
	}

	if s.InstancesFile == "" {
		return nil
	}
	defs, err := config.LoadInstances(s.InstancesFile)
	if err != nil {
		return err
	}
	for _, def := range defs {
		if err := e.register(def.Name, def.CacheConfig()); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) register(name string, cfg cache.Config) error {
	if cfg.Persist && e.store == nil {
		e.logger.Warn("persistence requested without a durable backend, keeping instance in memory",
			logger.Cache(name))
		cfg.Persist = false
	}
	if _, err := cache.Register[any](e.registry, name, cfg); err != nil {
		return fmt.Errorf("register %q: %w", name, err)
	}
	return nil
}

func (e *Engine) openBackend(ctx context.Context, s config.Settings) error {
	switch s.Backend {
	case config.BackendMemory:
		return nil

	case config.BackendFile:
		var cfg file.Config
		if err := config.Load(&cfg); err != nil {
			return errors.Join(ErrBackendConfig, err)
		}
		store, err := file.NewLocalStore(cfg)
		if err != nil {
			return errors.Join(ErrBackendConnection, err)
		}
		e.store, e.check = store, store.Healthcheck

	case config.BackendRedis:
		var cfg redis.Config
		if err := config.Load(&cfg); err != nil {
			return errors.Join(ErrBackendConfig, err)
		}
		client, err := redis.Connect(ctx, cfg)
		if err != nil {
			return errors.Join(ErrBackendConnection, err)
		}
		store := redis.NewStoreWithConfig(client, cfg)
		e.store, e.check = store, store.Healthcheck
		e.closers = append(e.closers, client.Close)

	case config.BackendMongo:
		var cfg mongo.Config
		if err := config.Load(&cfg); err != nil {
			return errors.Join(ErrBackendConfig, err)
		}
		client, err := mongo.New(ctx, cfg)
		if err != nil {
			return errors.Join(ErrBackendConnection, err)
		}
		e.closers = append(e.closers, func() error { return client.Disconnect(context.Background()) })
		store, err := mongo.NewStoreFromConfig(ctx, client, cfg)
		if err != nil {
			_ = e.closeBackend()
			return errors.Join(ErrBackendConnection, err)
		}
		e.store, e.check = store, store.Healthcheck

	case config.BackendPostgres:
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return errors.Join(ErrBackendConfig, err)
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return errors.Join(ErrBackendConnection, err)
		}
		e.closers = append(e.closers, func() error { pool.Close(); return nil })
		if err := pg.Migrate(ctx, pool, cfg, e.logger); err != nil {
			_ = e.closeBackend()
			return errors.Join(ErrBackendConnection, err)
		}
		store := pg.NewStore(pool)
		e.store, e.check = store, store.Healthcheck

	case config.BackendS3:
		var cfg file.S3Config
		if err := config.Load(&cfg); err != nil {
			return errors.Join(ErrBackendConfig, err)
		}
		store, err := file.NewS3Store(ctx, cfg)
		if err != nil {
			return errors.Join(ErrBackendConnection, err)
		}
		e.store, e.check = store, store.Healthcheck

	default:
		return fmt.Errorf("%w: %q", config.ErrUnknownBackend, s.Backend)
	}
	return nil
}

// Registry returns the registry holding every instance.
func (e *Engine) Registry() *cache.Registry {
	return e.registry
}

// Metrics returns the Prometheus metrics, or nil when WithPrometheus was not used.
func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}

// Cache returns the untyped instance registered under name.
func (e *Engine) Cache(name string) (*cache.Cache[any], error) {
	return e.registry.GetInstance(name)
}

// Backend reports the name of the durable backend in use.
func (e *Engine) Backend() string {
	return e.backend
}

// Healthcheck checks the durable backend. The memory backend is always healthy.
func (e *Engine) Healthcheck(ctx context.Context) error {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return ErrEngineClosed
	}
	if e.check == nil {
		return nil
	}
	if err := e.check(ctx); err != nil {
		return errors.Join(ErrBackendUnhealthy, err)
	}
	return nil
}

// Close stops the sweeper and releases backend connections. Instances keep
// serving from memory; persistent writes after Close fail and are logged.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineClosed
	}
	e.closed = true
	err := e.registry.Stop()
	e.logger.Info("cache engine stopped", logger.Backend(e.backend))
	return errors.Join(err, e.closeBackend())
}

func (e *Engine) closeBackend() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
