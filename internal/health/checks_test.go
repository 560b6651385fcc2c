package health_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudmart/catalog-service/internal/cache"
	"github.com/cloudmart/catalog-service/internal/config"
	catalogHealth "github.com/cloudmart/catalog-service/internal/health"
	"github.com/hellofresh/health-go/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachableDatabase() *config.Config {
	return &config.Config{
		Database: config.Database{
			Host:     "127.0.0.1",
			Port:     "1",
			User:     "catalog",
			Password: "catalog",
			Name:     "catalog",
			SSLMode:  "disable",
		},
	}
}

func liveCache(t *testing.T) (cache.Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedisCache(client, &config.CacheConfig{
		DefaultTTL:       5 * time.Minute,
		OperationTimeout: time.Second,
		ScanCount:        10,
	}), mr
}

func TestCacheCheck(t *testing.T) {

	t.Run("live cache", func(t *testing.T) {
		store, _ := liveCache(t)

		assert.NoError(t, catalogHealth.CacheCheck(store)(t.Context()))
	})

	t.Run("redis went away", func(t *testing.T) {
		store, mr := liveCache(t)
		mr.Close()

		assert.Error(t, catalogHealth.CacheCheck(store)(t.Context()))
	})

	t.Run("disabled cache", func(t *testing.T) {
		assert.ErrorIs(t, catalogHealth.CacheCheck(cache.Disabled())(t.Context()), cache.ErrCacheDisabled)
	})
}

func TestNewHealthHandler(t *testing.T) {

	t.Run("database down is unavailable", func(t *testing.T) {
		h, err := catalogHealth.NewHealthHandler(unreachableDatabase(), cache.Disabled())
		require.NoError(t, err)

		check := h.Measure(t.Context())

		assert.Equal(t, health.StatusUnavailable, check.Status)
		assert.Contains(t, check.Failures, "database")
		assert.NotContains(t, check.Failures, "redis")
		assert.Equal(t, catalogHealth.ComponentName, check.Component.Name)
	})

	t.Run("redis failure is reported for a live cache", func(t *testing.T) {
		store, mr := liveCache(t)
		mr.Close()

		h, err := catalogHealth.NewHealthHandler(unreachableDatabase(), store)
		require.NoError(t, err)

		check := h.Measure(t.Context())

		assert.Contains(t, check.Failures, "redis")
	})
}
