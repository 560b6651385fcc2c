package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudmart/catalog-service/internal/api/middleware"
	"github.com/cloudmart/catalog-service/internal/config"
	"github.com/cloudmart/catalog-service/internal/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

const connectTimeout = 5 * time.Second

type redisCache struct {
	client  *redis.Client
	cfg     *config.CacheConfig
	breaker *gobreaker.CircuitBreaker
}

func NewRedisCache(client *redis.Client, cfg *config.CacheConfig) Cache {
	return &redisCache{
		client:  client,
		cfg:     cfg,
		breaker: newBreaker(cfg.Breaker),
	}
}

// Connect pings Redis once. When the cache is switched off, has no host, or
// cannot be reached, the returned adapter is disabled for the process lifetime.
func Connect(ctx context.Context, cfg *config.Config) Cache {

	if cfg.Cache.Disabled || cfg.RedisConnect.Host == "" {
		slog.Info("Cache disabled by configuration")
		return Disabled()
	}

	slog.Info("Connecting to Redis", slog.String("url", fmt.Sprintf("redis://%s:<password>@%s:%s", cfg.RedisConnect.Username, cfg.RedisConnect.Host, cfg.RedisConnect.Port)))

	opt, err := redis.ParseURL(cfg.RedisConnect.GetDSN())
	if err != nil {
		slog.Warn("Failed to parse Redis URL, caching disabled", slog.Any("error", err))
		return Disabled()
	}
	opt.DB = cfg.RedisConnect.DB

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Warn("Redis unreachable, caching disabled", slog.Any("error", err))
		_ = client.Close()
		return Disabled()
	}

	slog.Info("Successfully connected to Redis")

	return NewRedisCache(client, &cfg.Cache)
}

func newBreaker(cfg config.BreakerConfig) *gobreaker.CircuitBreaker {

	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// a missing key is an answer and a caller that went away says
		// nothing about redis; neither counts toward tripping
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Cache circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
}

func (r *redisCache) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.OperationTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, r.cfg.OperationTimeout)
}

func (r *redisCache) Get(ctx context.Context, key string, dest any) Lookup {

	logger := middleware.LoggerFromContext(ctx)

	opCtx, cancel := r.opContext(ctx)
	defer cancel()

	res, err := r.breaker.Execute(func() (any, error) {
		return r.client.Get(opCtx, key).Bytes()
	})
	if err != nil {

		if errors.Is(err, redis.Nil) {
			metrics.ObserveCacheOperation("get", Miss.String())
			return Miss
		}

		logger.Warn("Cache read failed", slog.String("key", key), slog.Any("error", err))
		metrics.ObserveCacheOperation("get", Unavailable.String())
		return Unavailable
	}

	if err := json.Unmarshal(res.([]byte), dest); err != nil {
		// the next Set overwrites the broken entry
		logger.Warn("Failed to decode cached value", slog.String("key", key), slog.Any("error", err))
		metrics.ObserveCacheOperation("get", Miss.String())
		return Miss
	}

	metrics.ObserveCacheOperation("get", Hit.String())
	return Hit
}

func (r *redisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) Result {

	logger := middleware.LoggerFromContext(ctx)

	data, err := json.Marshal(value)
	if err != nil {
		logger.Error("Failed to encode value for cache", slog.String("key", key), slog.Any("error", err))
		metrics.ObserveCacheOperation("set", Failed.String())
		return Failed
	}

	if ttl <= 0 {
		ttl = r.cfg.DefaultTTL
	}

	opCtx, cancel := r.opContext(ctx)
	defer cancel()

	_, err = r.breaker.Execute(func() (any, error) {
		return nil, r.client.Set(opCtx, key, data, ttl).Err()
	})

	return r.outcome(logger, "set", key, err)
}

func (r *redisCache) Delete(ctx context.Context, key string) Result {

	logger := middleware.LoggerFromContext(ctx)

	opCtx, cancel := r.opContext(ctx)
	defer cancel()

	_, err := r.breaker.Execute(func() (any, error) {
		return nil, r.client.Del(opCtx, key).Err()
	})

	return r.outcome(logger, "delete", key, err)
}

func (r *redisCache) DeletePattern(ctx context.Context, pattern string) Result {

	logger := middleware.LoggerFromContext(ctx)

	opCtx, cancel := r.opContext(ctx)
	defer cancel()

	res, err := r.breaker.Execute(func() (any, error) {

		// walk the whole keyspace first; deleting mid-scan can move
		// unvisited keys behind the cursor
		var matched []string
		var cursor uint64

		for {
			keys, next, err := r.client.Scan(opCtx, cursor, pattern, r.cfg.ScanCount).Result()
			if err != nil {
				return int64(0), err
			}

			matched = append(matched, keys...)

			cursor = next
			if cursor == 0 {
				break
			}
		}

		var deleted int64

		for _, batch := range chunk(matched, r.batchSize()) {
			n, err := r.client.Del(opCtx, batch...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}

		return deleted, nil
	})

	if err == nil {
		logger.Debug("Cache pattern deleted", slog.String("pattern", pattern), slog.Int64("deleted", res.(int64)))
	}

	return r.outcome(logger, "delete_pattern", pattern, err)
}

func (r *redisCache) batchSize() int {
	if r.cfg.ScanCount <= 0 {
		return 500
	}

	return int(r.cfg.ScanCount)
}

func chunk(keys []string, size int) [][]string {
	var batches [][]string

	for len(keys) > size {
		batches = append(batches, keys[:size])
		keys = keys[size:]
	}

	if len(keys) > 0 {
		batches = append(batches, keys)
	}

	return batches
}

func (r *redisCache) outcome(logger *slog.Logger, op, key string, err error) Result {
	if err != nil {
		logger.Warn("Cache write failed", slog.String("operation", op), slog.String("key", key), slog.Any("error", err))
		metrics.ObserveCacheOperation(op, Failed.String())
		return Failed
	}

	metrics.ObserveCacheOperation(op, OK.String())
	return OK
}

func (r *redisCache) Enabled() bool {
	return true
}

func (r *redisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
