package repository

import (
	"context"
	"time"
)

// QueryTimeout caps every statement, and the whole transaction for stock
// adjustments, independently of the caller's deadline.
const QueryTimeout = 5 * time.Second

func withDBTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, QueryTimeout)
}
