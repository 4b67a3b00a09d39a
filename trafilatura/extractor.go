// Package trafilatura implements main-content text extraction using
// go-trafilatura. It drops navigation, footers and other boilerplate that
// agency pages carry around the announcement itself.
package trafilatura

import (
	"bytes"
	"errors"
	"strings"

	"github.com/fwojciec/drugwatch"
	"github.com/markusmobius/go-trafilatura"
)

// Ensure Parser implements drugwatch.TextParser at compile time.
var _ drugwatch.TextParser = (*Parser)(nil)

// Parser wraps go-trafilatura to extract the main text of an HTML page.
type Parser struct {
	// Fallback is used when trafilatura cannot find main content.
	// If nil, that case is returned as an error.
	Fallback drugwatch.TextParser
}

// NewParser creates a new Parser with an optional fallback parser.
func NewParser(fallback drugwatch.TextParser) *Parser {
	return &Parser{Fallback: fallback}
}

// ParseText returns the main content of the page as a single
// whitespace-normalized string.
func (p *Parser) ParseText(body []byte, contentType string) (string, error) {
	text, err := p.extract(body)
	if err == nil && text != "" {
		return text, nil
	}
	if p.Fallback != nil {
		return p.Fallback.ParseText(body, contentType)
	}
	if err == nil {
		err = errors.New("no main content found")
	}
	return "", drugwatch.Errorf(drugwatch.EINVALID, "trafilatura: %v", err)
}

func (p *Parser) extract(body []byte) (string, error) {
	if len(body) == 0 {
		return "", errors.New("empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(bytes.NewReader(body), opts)
	if err != nil {
		return "", err
	}

	var parts []string
	if title := strings.TrimSpace(result.Metadata.Title); title != "" {
		parts = append(parts, title)
	}
	parts = append(parts, strings.Fields(result.ContentText)...)
	return strings.Join(parts, " "), nil
}
