package mock

import (
	"context"

	"github.com/fwojciec/drugwatch"
)

var (
	_ drugwatch.ContentExtractor = (*ContentExtractor)(nil)
	_ drugwatch.TextParser       = (*TextParser)(nil)
)

// ContentExtractor is a mock implementation of drugwatch.ContentExtractor.
type ContentExtractor struct {
	ExtractFn func(ctx context.Context, url string) *drugwatch.ExtractedText
}

func (e *ContentExtractor) Extract(ctx context.Context, url string) *drugwatch.ExtractedText {
	return e.ExtractFn(ctx, url)
}

// TextParser is a mock implementation of drugwatch.TextParser.
type TextParser struct {
	ParseTextFn func(body []byte, contentType string) (string, error)
}

func (p *TextParser) ParseText(body []byte, contentType string) (string, error) {
	return p.ParseTextFn(body, contentType)
}
