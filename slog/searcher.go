package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/drugwatch"
)

// Ensure LoggingSearcher implements drugwatch.Searcher.
var _ drugwatch.Searcher = (*LoggingSearcher)(nil)

// LoggingSearcher wraps a Searcher with logging.
type LoggingSearcher struct {
	next   drugwatch.Searcher
	logger *slog.Logger
}

// NewLoggingSearcher creates a new LoggingSearcher.
func NewLoggingSearcher(next drugwatch.Searcher, logger *slog.Logger) *LoggingSearcher {
	return &LoggingSearcher{next: next, logger: logger}
}

// Search delegates to the wrapped searcher and logs the operation.
func (s *LoggingSearcher) Search(ctx context.Context, q drugwatch.SearchQuery) (hits []*drugwatch.SearchHit, err error) {
	defer func(begin time.Time) {
		s.logger.Info("search",
			"query", q.Query,
			"count", q.Count,
			"recency", q.Recency,
			"hits", len(hits),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, q)
}
