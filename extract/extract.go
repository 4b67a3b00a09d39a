// Package extract turns fetched documents into bounded plain text.
// It dispatches on the declared content type to a PDF or HTML parser and
// never reports failures to its caller: any error yields empty text.
package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/drugwatch"
)

// DefaultMaxTextLength is the default cap on extracted text, in runes.
const DefaultMaxTextLength = 8000

// Ensure Extractor implements drugwatch.ContentExtractor at compile time.
var _ drugwatch.ContentExtractor = (*Extractor)(nil)

// Extractor fetches URLs and returns their normalized text.
type Extractor struct {
	Fetcher drugwatch.Fetcher
	HTML    drugwatch.TextParser
	PDF     drugwatch.TextParser
	Logger  *slog.Logger

	// MaxTextLength caps the returned text. Zero means DefaultMaxTextLength.
	MaxTextLength int

	// RetryDelays are the waits between fetch attempts. Nil means a single attempt.
	RetryDelays []time.Duration
}

// Extract fetches url and returns its text, truncated to MaxTextLength.
// The returned value is never nil; its Text is empty on failure.
func (e *Extractor) Extract(ctx context.Context, url string) *drugwatch.ExtractedText {
	result := &drugwatch.ExtractedText{URL: url, Format: drugwatch.FormatUnknown}

	resp, err := FetchWithRetryDelays(ctx, url, e.Fetcher.Fetch, e.logRetry, e.RetryDelays)
	if err != nil {
		e.logger().Warn("content fetch failed", "url", url, "err", err)
		return result
	}

	result.Format = drugwatch.DetectFormat(resp.ContentType)
	parser := e.HTML
	if result.Format == drugwatch.FormatPDF {
		parser = e.PDF
	}

	text, err := parser.ParseText(resp.Body, resp.ContentType)
	if err != nil {
		e.logger().Warn("content parse failed", "url", url, "format", result.Format, "err", err)
		return result
	}

	result.Text = drugwatch.Truncate(text, e.maxTextLength())
	return result
}

func (e *Extractor) maxTextLength() int {
	if e.MaxTextLength <= 0 {
		return DefaultMaxTextLength
	}
	return e.MaxTextLength
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e *Extractor) logRetry(url string, attempt int, err error) {
	e.logger().Debug("retrying fetch", "url", url, "attempt", attempt, "err", err)
}
