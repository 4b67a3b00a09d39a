package extract

import (
	"context"
	"time"

	"github.com/fwojciec/drugwatch"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (*drugwatch.Response, error)

// RetryLogFunc is called before each retry attempt.
type RetryLogFunc func(url string, attempt int, err error)

// FixedRetryDelays returns n retry delays of d each.
func FixedRetryDelays(n int, d time.Duration) []time.Duration {
	if n <= 0 {
		return nil
	}
	delays := make([]time.Duration, n)
	for i := range delays {
		delays[i] = d
	}
	return delays
}

// FetchWithRetryDelays calls fetch once plus once per entry in delays,
// waiting the given delay before each retry. Client errors (EINVALID) are
// not retried. The logger, if provided, is called for each retry attempt.
func FetchWithRetryDelays(ctx context.Context, url string, fetch FetchFunc, logger RetryLogFunc, delays []time.Duration) (*drugwatch.Response, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := fetch(ctx, url)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 || drugwatch.ErrorCode(err) == drugwatch.EINVALID {
			break
		}

		if logger != nil {
			logger(url, attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return nil, lastErr
}
