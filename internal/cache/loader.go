package cache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
)

var tracer = otel.Tracer("github.com/cloudmart/catalog-service/internal/cache")

// SharedLoadTimeout bounds a coalesced data-layer load.
const SharedLoadTimeout = 10 * time.Second

// Loader fronts a Cache with per-key miss coalescing.
type Loader struct {
	store Cache
	group singleflight.Group
}

func NewLoader(store Cache) *Loader {
	return &Loader{store: store}
}

func (l *Loader) Store() Cache {
	return l.store
}

// ReadThrough returns the cached value under key or calls load, caches the
// result for ttl and returns it. Errors from load are returned as is and
// nothing is cached for them. The outcome of the cache write is ignored.
//
// Concurrent misses on one key share a single load. That load runs detached
// from any one caller's cancellation, bounded by SharedLoadTimeout; each
// caller still stops waiting when its own ctx is done.
func ReadThrough[T any](ctx context.Context, l *Loader, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {

	ctx, span := tracer.Start(ctx, "cache.ReadThrough")
	defer span.End()

	var zero T

	var cached T
	lookup := l.store.Get(ctx, key, &cached)
	span.SetAttributes(attribute.String("cache.key", key), attribute.String("cache.lookup", lookup.String()))

	if lookup == Hit {
		return cached, nil
	}

	ch := l.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), SharedLoadTimeout)
		defer cancel()

		value, err := load(loadCtx)
		if err != nil {
			return nil, err
		}

		l.store.Set(loadCtx, key, value, ttl)

		return value, nil
	})

	select {
	case <-ctx.Done():
		span.RecordError(ctx.Err())
		return zero, ctx.Err()

	case res := <-ch:
		span.SetAttributes(attribute.Bool("cache.shared_load", res.Shared))

		if res.Err != nil {
			span.RecordError(res.Err)
			return zero, res.Err
		}

		return res.Val.(T), nil
	}
}
