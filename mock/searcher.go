package mock

import (
	"context"

	"github.com/fwojciec/drugwatch"
)

var _ drugwatch.Searcher = (*Searcher)(nil)

// Searcher is a mock implementation of drugwatch.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, q drugwatch.SearchQuery) ([]*drugwatch.SearchHit, error)
}

func (s *Searcher) Search(ctx context.Context, q drugwatch.SearchQuery) ([]*drugwatch.SearchHit, error) {
	return s.SearchFn(ctx, q)
}
