package track

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/drugwatch"
	"golang.org/x/time/rate"
)

var _ drugwatch.RateLimiter = (*ProviderLimiter)(nil)

// Default minimum intervals between calls to each provider.
const (
	DefaultSearchInterval    = 2 * time.Second
	DefaultGeneratorInterval = 1500 * time.Millisecond
)

// ProviderLimiter paces calls per external provider using token buckets.
// Each provider key gets its own limiter with a burst of 1, so calls to a
// provider are spaced at least its interval apart no matter how many
// goroutines share the limiter.
type ProviderLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	intervals map[string]time.Duration
}

// NewProviderLimiter creates a ProviderLimiter with the given minimum
// interval per provider key. Keys without a positive interval are not limited.
func NewProviderLimiter(intervals map[string]time.Duration) *ProviderLimiter {
	copied := make(map[string]time.Duration, len(intervals))
	for k, v := range intervals {
		copied[k] = v
	}
	return &ProviderLimiter{
		limiters:  make(map[string]*rate.Limiter),
		intervals: copied,
	}
}

// Wait blocks until the rate limit allows a call to the provider.
// Returns an error if the context is canceled before the wait completes.
func (l *ProviderLimiter) Wait(ctx context.Context, key string) error {
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Inf, 1)
		if d := l.intervals[key]; d > 0 {
			limiter = rate.NewLimiter(rate.Every(d), 1)
		}
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	return limiter.Wait(ctx)
}
