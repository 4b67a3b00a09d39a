package drugwatch

import "context"

// Rate limiter keys for the external providers.
const (
	ProviderSearch    = "search"
	ProviderGenerator = "generator"
)

// RateLimiter paces calls to external providers.
type RateLimiter interface {
	// Wait blocks until a call to the provider identified by key is allowed.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, key string) error
}
