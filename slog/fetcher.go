// Package slog provides logging decorators for drugwatch services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/drugwatch"
)

// Ensure LoggingFetcher implements drugwatch.Fetcher.
var _ drugwatch.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging.
type LoggingFetcher struct {
	next   drugwatch.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next drugwatch.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (resp *drugwatch.Response, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url, "duration", time.Since(begin)}
		if resp != nil {
			attrs = append(attrs,
				"status", resp.StatusCode,
				"content_type", resp.ContentType,
				"bytes", len(resp.Body),
			)
		}
		attrs = append(attrs, "err", err)
		f.logger.Debug("fetch", attrs...)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}
