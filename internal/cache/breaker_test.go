package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudmart/catalog-service/internal/config"
	"github.com/go-redis/redismock/v9"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	ctx := t.Context()

	client, mock := redismock.NewClientMock()
	store := NewRedisCache(client, &config.CacheConfig{
		DefaultTTL:       time.Minute,
		OperationTimeout: time.Second,
		Breaker:          config.BreakerConfig{MaxFailures: 2, OpenTimeout: time.Minute},
	}).(*redisCache)

	var dest string

	mock.ExpectGet("products:1").RedisNil()
	mock.ExpectGet("products:1").SetErr(errors.New("connection refused"))
	mock.ExpectGet("products:1").SetErr(errors.New("connection refused"))

	assert.Equal(t, Miss, store.Get(ctx, "products:1", &dest))
	assert.Equal(t, gobreaker.StateClosed, store.breaker.State(), "a miss must not count as a failure")

	assert.Equal(t, Unavailable, store.Get(ctx, "products:1", &dest))
	assert.Equal(t, Unavailable, store.Get(ctx, "products:1", &dest))
	assert.Equal(t, gobreaker.StateOpen, store.breaker.State())

	// open breaker short-circuits without reaching redis
	assert.Equal(t, Unavailable, store.Get(ctx, "products:1", &dest))
	assert.Equal(t, Failed, store.Set(ctx, "products:1", "x", time.Minute))
	assert.Equal(t, Failed, store.DeletePattern(ctx, ProductPattern))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBreakerIgnoresCancelledCallers(t *testing.T) {
	ctx := t.Context()

	client, mock := redismock.NewClientMock()
	store := NewRedisCache(client, &config.CacheConfig{
		DefaultTTL:       time.Minute,
		OperationTimeout: time.Second,
		Breaker:          config.BreakerConfig{MaxFailures: 2, OpenTimeout: time.Minute},
	}).(*redisCache)

	var dest string

	for range 5 {
		mock.ExpectGet("products:1").SetErr(context.Canceled)
	}
	mock.ExpectGet("products:1").SetVal(`"lamp"`)

	for range 5 {
		assert.Equal(t, Unavailable, store.Get(ctx, "products:1", &dest))
	}
	assert.Equal(t, gobreaker.StateClosed, store.breaker.State(), "client disconnects must not trip the breaker")

	assert.Equal(t, Hit, store.Get(ctx, "products:1", &dest))
	assert.Equal(t, "lamp", dest)

	assert.NoError(t, mock.ExpectationsWereMet())
}
