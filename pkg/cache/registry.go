package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultSweepInterval is how often the Registry purges expired entries.
const DefaultSweepInterval = 60 * time.Second

// Instance is the type-independent view of a cache instance held by a Registry.
type Instance interface {
	Name() string
	Stats() Stats
	Len() int
	DeleteExpired() int
	Clear()
}

// Registry owns a set of named cache instances and the sweeper that expires
// their entries. Construct one at process start and pass it to consumers.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]Instance

	store    Store
	logger   *slog.Logger
	now      func() time.Time
	interval time.Duration
	base     []Option

	lifeMu sync.Mutex
	cancel context.CancelFunc
	group  *errgroup.Group
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryStore sets the Store handed to every persistent instance.
func WithRegistryStore(s Store) RegistryOption {
	return func(r *Registry) {
		if s != nil {
			r.store = s
		}
	}
}

// WithRegistryLogger sets the logger for the sweeper and every instance.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRegistryClock sets the clock shared by every instance.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithSweepInterval sets how often Start sweeps expired entries.
func WithSweepInterval(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithInstanceOptions adds options applied to every instance before its own.
func WithInstanceOptions(opts ...Option) RegistryOption {
	return func(r *Registry) {
		r.base = append(r.base, opts...)
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		instances: make(map[string]Instance),
		logger:    slog.Default(),
		now:       time.Now,
		interval:  DefaultSweepInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewDefaultRegistry creates a Registry with the default, api, page and
// user-data instances registered as untyped caches using DefaultConfigs.
func NewDefaultRegistry(opts ...RegistryOption) (*Registry, error) {
	r := NewRegistry(opts...)
	for name, cfg := range DefaultConfigs() {
		if cfg.Persist && r.store == nil {
			cfg.Persist = false
		}
		if _, err := Register[any](r, name, cfg); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register creates a cache instance under name. Names double as persistence
// namespaces, so registering a name twice is an error.
func Register[V any](r *Registry, name string, cfg Config, opts ...Option) (*Cache[V], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.instances[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrInstanceExists, name)
	}

	all := make([]Option, 0, len(r.base)+len(opts)+3)
	all = append(all, WithLogger(r.logger), WithClock(r.now))
	if r.store != nil {
		all = append(all, WithStore(r.store))
	}
	all = append(all, r.base...)
	all = append(all, opts...)

	c, err := New[V](name, cfg, all...)
	if err != nil {
		return nil, err
	}
	r.instances[name] = c
	return c, nil
}

// Lookup returns the instance registered under name as a *Cache[V].
func Lookup[V any](r *Registry, name string) (*Cache[V], error) {
	r.mu.RLock()
	inst, ok := r.instances[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInstanceNotFound, name)
	}
	c, ok := inst.(*Cache[V])
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T", ErrTypeMismatch, name, inst)
	}
	return c, nil
}

// GetInstance returns an untyped instance, such as the ones NewDefaultRegistry creates.
func (r *Registry) GetInstance(name string) (*Cache[any], error) {
	return Lookup[any](r, name)
}

// Instance returns the type-independent view of the instance registered under name.
func (r *Registry) Instance(name string) (Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[name]
	return inst, ok
}

// Names returns the registered instance names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.instances))
	for name := range r.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats returns a snapshot for every registered instance.
func (r *Registry) Stats() map[string]Stats {
	out := make(map[string]Stats)
	for _, inst := range r.snapshot() {
		out[inst.Name()] = inst.Stats()
	}
	return out
}

func (r *Registry) snapshot() []Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		list = append(list, inst)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}
