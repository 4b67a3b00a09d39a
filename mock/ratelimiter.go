package mock

import (
	"context"

	"github.com/fwojciec/drugwatch"
)

var _ drugwatch.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is a mock implementation of drugwatch.RateLimiter.
type RateLimiter struct {
	WaitFn func(ctx context.Context, key string) error
}

func (l *RateLimiter) Wait(ctx context.Context, key string) error {
	return l.WaitFn(ctx, key)
}
