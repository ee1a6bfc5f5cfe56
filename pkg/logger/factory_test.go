package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/smartcache/pkg/logger"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Run("json at info by default", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))

		log.Debug("cache hit", logger.Cache("api"))
		assert.Zero(t, buf.Len(), "debug is below the default level")

		log.Info("cache sweeper started", logger.Count(3))
		entry := decode(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "cache sweeper started", entry["msg"])
		assert.EqualValues(t, 3, entry["count"])
	})

	t.Run("format options", func(t *testing.T) {
		tests := []struct {
			name string
			opts []logger.Option
			json bool
		}{
			{"text formatter", []logger.Option{logger.WithTextFormatter()}, false},
			{"text format", []logger.Option{logger.WithFormat(logger.FormatText)}, false},
			{"json wins when last", []logger.Option{logger.WithTextFormatter(), logger.WithJSONFormatter()}, true},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				buf := &bytes.Buffer{}
				log := logger.New(append(tt.opts, logger.WithOutput(buf))...)
				log.Warn("slow cache producer", logger.Key("report:42"))

				if tt.json {
					assert.Equal(t, "report:42", decode(t, buf)["key"])
					return
				}
				assert.Contains(t, buf.String(), "level=WARN")
				assert.Contains(t, buf.String(), "key=report:42")
			})
		}
	})

	t.Run("level option", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithLevel(slog.LevelError))
		log.Warn("cache entry not persisted")
		assert.Zero(t, buf.Len())
		log.Error("failed to persist cache entry")
		assert.Equal(t, "ERROR", decode(t, buf)["level"])
	})

	t.Run("static attributes", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithAttr(logger.Backend("redis"), logger.Component("sweeper")),
		)
		log.Info("msg")
		entry := decode(t, buf)
		assert.Equal(t, "redis", entry["backend"])
		assert.Equal(t, "sweeper", entry["component"])
	})
}

func TestSetAsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	buf := &bytes.Buffer{}
	logger.SetAsDefault(logger.New(logger.WithOutput(buf)))
	slog.Info("default")
	assert.Equal(t, "default", decode(t, buf)["msg"])
}

func TestWithFormatPanics(t *testing.T) {
	assert.Panics(t, func() {
		logger.New(logger.WithFormat(logger.Format("xml")))
	})
}
