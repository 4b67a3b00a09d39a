package mock

import (
	"context"

	"github.com/fwojciec/drugwatch"
)

var _ drugwatch.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of drugwatch.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*drugwatch.Response, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*drugwatch.Response, error) {
	return f.FetchFn(ctx, url)
}
