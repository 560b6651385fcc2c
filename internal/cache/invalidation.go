package cache

import (
	"context"
	"log/slog"

	"github.com/cloudmart/catalog-service/internal/api/middleware"
	"github.com/cloudmart/catalog-service/internal/metrics"
)

// Event names a committed catalog write.
type Event string

const (
	ProductCreated  Event = "product.created"
	ProductUpdated  Event = "product.updated"
	ProductDeleted  Event = "product.deleted"
	StockAdjusted   Event = "product.stock_adjusted"
	CategoryCreated Event = "category.created"
	CategoryUpdated Event = "category.updated"
	CategoryDeleted Event = "category.deleted"
)

// Rule lists what a write makes stale: exact keys derived from the entity id
// and glob patterns removed with SCAN.
type Rule struct {
	Keys     []func(id int64) string
	Patterns []string
}

func fixed(key string) func(int64) string {
	return func(int64) string { return key }
}

// Invalidations maps every write event to the cache entries it affects.
// Products embed their category, so category changes drop every product entry.
var Invalidations = map[Event]Rule{
	ProductCreated: {Patterns: []string{ProductListPattern}},
	ProductUpdated: {Keys: []func(int64) string{ProductKey}, Patterns: []string{ProductListPattern}},
	ProductDeleted: {Keys: []func(int64) string{ProductKey}, Patterns: []string{ProductListPattern}},
	StockAdjusted:  {Keys: []func(int64) string{ProductKey}, Patterns: []string{ProductListPattern}},

	CategoryCreated: {Keys: []func(int64) string{fixed(CategoryListKey)}},
	CategoryUpdated: {Keys: []func(int64) string{CategoryKey, fixed(CategoryListKey)}, Patterns: []string{ProductPattern}},
	CategoryDeleted: {Keys: []func(int64) string{CategoryKey, fixed(CategoryListKey)}, Patterns: []string{ProductPattern}},
}

type Invalidator struct {
	store Cache
	rules map[Event]Rule
}

func NewInvalidator(store Cache) *Invalidator {
	return &Invalidator{store: store, rules: Invalidations}
}

// Invalidate applies the rule for event. It is not atomic across keys; a
// Failed result means at least one delete did not go through.
//
// It runs after a commit, so the caller's cancellation is dropped: a client
// hanging up must not leave committed data shadowed by stale entries. Each
// delete is still bounded by the adapter's operation timeout.
func (i *Invalidator) Invalidate(ctx context.Context, event Event, id int64) Result {

	ctx = context.WithoutCancel(ctx)

	if !i.store.Enabled() {
		return OK
	}

	logger := middleware.LoggerFromContext(ctx)

	rule, ok := i.rules[event]
	if !ok {
		logger.Error("No invalidation rule for event", slog.String("event", string(event)))
		return Failed
	}

	result := OK

	for _, key := range rule.Keys {
		if i.store.Delete(ctx, key(id)) != OK {
			result = Failed
		}
	}

	for _, pattern := range rule.Patterns {
		if i.store.DeletePattern(ctx, pattern) != OK {
			result = Failed
		}
	}

	metrics.ObserveInvalidation(string(event))

	if result != OK {
		logger.Warn("Cache invalidation incomplete", slog.String("event", string(event)), slog.Int64("id", id))
	}

	return result
}
