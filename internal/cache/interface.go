package cache

import (
	"context"
	"time"
)

// Cache is the catalog's view of the key-value tier. It never returns
// backing-store errors: reads degrade to Miss or Unavailable, writes to
// Failed. Callers keep serving from the data layer either way.
type Cache interface {
	Get(ctx context.Context, key string, dest any) Lookup
	// Set stores value as JSON. ttl <= 0 selects the configured default.
	Set(ctx context.Context, key string, value any, ttl time.Duration) Result
	// Delete removes key. An absent key is OK.
	Delete(ctx context.Context, key string) Result
	// DeletePattern removes every key matching a glob pattern such as "products:list:*".
	DeletePattern(ctx context.Context, pattern string) Result
	Enabled() bool
	Ping(ctx context.Context) error
	Close() error
}

// Lookup is the outcome of a cache read.
type Lookup uint8

const (
	Miss Lookup = iota
	Hit
	Unavailable
)

func (l Lookup) String() string {
	switch l {
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	default:
		return "unavailable"
	}
}

// Result is the outcome of a cache write or delete.
type Result uint8

const (
	Failed Result = iota
	OK
)

func (r Result) String() string {
	if r == OK {
		return "ok"
	}

	return "failed"
}
