package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheDisabled = errors.New("cache disabled")

type disabledCache struct{}

// Disabled returns the adapter used when Redis is not available at startup.
// Reads report Unavailable and writes report Failed.
func Disabled() Cache {
	return disabledCache{}
}

func (disabledCache) Get(context.Context, string, any) Lookup {
	return Unavailable
}

func (disabledCache) Set(context.Context, string, any, time.Duration) Result {
	return Failed
}

func (disabledCache) Delete(context.Context, string) Result {
	return Failed
}

func (disabledCache) DeletePattern(context.Context, string) Result {
	return Failed
}

func (disabledCache) Enabled() bool {
	return false
}

func (disabledCache) Ping(context.Context) error {
	return ErrCacheDisabled
}

func (disabledCache) Close() error {
	return nil
}
