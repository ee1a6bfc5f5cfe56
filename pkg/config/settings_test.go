package config_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/smartcache/pkg/cache"
	"github.com/dmitrymomot/smartcache/pkg/config"
	"github.com/dmitrymomot/smartcache/pkg/logger"
)

func TestSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var s config.Settings
		require.NoError(t, config.ForceReload(&s))

		assert.Equal(t, config.BackendMemory, s.Backend)
		assert.Equal(t, 60*time.Second, s.SweepInterval)
		assert.Equal(t, 5*time.Second, s.PersistTimeout)
		assert.Equal(t, time.Second, s.SlowThreshold)
		assert.Equal(t, "production", s.Env)
		assert.Equal(t, "smartcache", s.Service)
		assert.False(t, s.Durable())
		require.NoError(t, s.Validate())

		assert.Equal(t, cache.DefaultConfigs(), s.InstanceConfigs())
	})

	t.Run("instance overrides", func(t *testing.T) {
		t.Setenv("CACHE_BACKEND", "redis")
		t.Setenv("CACHE_API_TTL", "45s")
		t.Setenv("CACHE_API_MAX_SIZE", "2048")
		t.Setenv("CACHE_PAGE_ENABLED", "false")
		t.Setenv("CACHE_USER_DATA_PERSIST", "false")

		var s config.Settings
		require.NoError(t, config.ForceReload(&s))
		require.NoError(t, s.Validate())
		assert.True(t, s.Durable())

		cfgs := s.InstanceConfigs()
		assert.Equal(t, cache.Config{TTL: 45 * time.Second, MaxSize: 2048, Enabled: true}, cfgs[cache.NameAPI])
		assert.False(t, cfgs[cache.NamePage].Enabled)
		assert.Equal(t, 10*time.Minute, cfgs[cache.NamePage].TTL)
		assert.False(t, cfgs[cache.NameUserData].Persist)
		assert.Equal(t, cache.DefaultConfig(), cfgs[cache.NameDefault])
	})

	t.Run("unknown backend", func(t *testing.T) {
		s := config.Settings{Backend: "memcached"}
		assert.ErrorIs(t, s.Validate(), config.ErrUnknownBackend)
	})

	t.Run("logging settings", func(t *testing.T) {
		s := config.Settings{Backend: config.BackendMemory, LogLevel: "verbose"}
		assert.ErrorIs(t, s.Validate(), config.ErrInvalidLogging)

		s = config.Settings{Backend: config.BackendMemory, LogFormat: "xml"}
		assert.ErrorIs(t, s.Validate(), config.ErrInvalidLogging)

		s = config.Settings{Backend: config.BackendMemory, Env: "production", Service: "svc", LogLevel: "warn", LogFormat: "text"}
		require.NoError(t, s.Validate())

		buf := &bytes.Buffer{}
		log := logger.New(append(s.LoggerOptions(), logger.WithOutput(buf))...)
		log.Info("cache engine started")
		assert.Zero(t, buf.Len(), "CACHE_LOG_LEVEL overrides the production preset")
		log.Warn("slow cache producer")
		assert.Contains(t, buf.String(), "level=WARN")
		assert.Contains(t, buf.String(), "service=svc")
	})

	t.Run("negative override", func(t *testing.T) {
		ttl := -time.Second
		s := config.Settings{Backend: config.BackendMemory, Default: config.Instance{TTL: &ttl}}
		assert.ErrorIs(t, s.Validate(), cache.ErrInvalidConfig)
	})
}
