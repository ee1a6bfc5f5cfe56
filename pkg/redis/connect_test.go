package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/smartcache/pkg/redis"
)

func TestConnect_InvalidConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("empty url", func(t *testing.T) {
		_, err := redis.Connect(ctx, redis.Config{ConnectTimeout: time.Second})
		assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
	})

	t.Run("malformed url", func(t *testing.T) {
		_, err := redis.Connect(ctx, redis.Config{
			ConnectionURL:  "mysql://localhost:3306",
			ConnectTimeout: time.Second,
		})
		assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
	})
}
