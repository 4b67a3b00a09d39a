package drugwatch

import (
	"context"
	"strings"
)

// SourceFormat identifies the detected format of a fetched document.
type SourceFormat string

// SourceFormat constants.
const (
	FormatPDF     SourceFormat = "pdf"
	FormatHTML    SourceFormat = "html"
	FormatUnknown SourceFormat = "unknown"
)

// DetectFormat maps a declared content type to a SourceFormat.
// Anything that does not declare PDF is treated as HTML, including a
// missing header; content is never sniffed.
func DetectFormat(contentType string) SourceFormat {
	if strings.Contains(strings.ToLower(contentType), "pdf") {
		return FormatPDF
	}
	return FormatHTML
}

// ExtractedText is normalized plain text taken from a fetched document.
type ExtractedText struct {
	URL    string
	Format SourceFormat
	Text   string
}

// IsEmpty reports whether there is no text to analyze.
func (t *ExtractedText) IsEmpty() bool {
	return t == nil || t.Text == ""
}

// TextParser converts a document body into plain text.
type TextParser interface {
	// ParseText returns the plain text contained in body.
	// contentType is the declared content type and may be empty.
	ParseText(body []byte, contentType string) (string, error)
}

// ContentExtractor fetches a URL and returns its normalized text.
type ContentExtractor interface {
	// Extract never returns nil. On any failure the returned text is empty
	// and the caller should skip the item.
	Extract(ctx context.Context, url string) *ExtractedText
}

// Truncate returns s limited to at most max runes.
// A non-positive max leaves s unchanged.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
