package service_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudmart/catalog-service/internal/cache"
	"github.com/cloudmart/catalog-service/internal/config"
	"github.com/redis/go-redis/v9"
)

func testCacheConfig() *config.CacheConfig {
	return &config.CacheConfig{
		DefaultTTL:       300 * time.Second,
		CategoryTTL:      3600 * time.Second,
		OperationTimeout: time.Second,
		ScanCount:        100,
		Breaker:          config.BreakerConfig{MaxFailures: 5, OpenTimeout: time.Minute},
	}
}

func setupCache(t *testing.T) (cache.Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedisCache(client, testCacheConfig()), mr
}

func strPtr(v string) *string { return &v }

func int64Ptr(v int64) *int64 { return &v }

func float64Ptr(v float64) *float64 { return &v }
