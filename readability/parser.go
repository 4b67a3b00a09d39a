// Package readability implements main-content text extraction using
// go-readability, an alternative to the trafilatura package for pages
// where its article detection works better.
package readability

import (
	"bytes"
	"errors"
	"strings"

	"github.com/fwojciec/drugwatch"
	"github.com/go-shiori/go-readability"
)

// Ensure Parser implements drugwatch.TextParser at compile time.
var _ drugwatch.TextParser = (*Parser)(nil)

// Parser wraps go-readability to extract the article text of an HTML page.
type Parser struct {
	// Fallback is used when no article can be found.
	// If nil, that case is returned as an error.
	Fallback drugwatch.TextParser
}

// NewParser creates a new Parser with an optional fallback parser.
func NewParser(fallback drugwatch.TextParser) *Parser {
	return &Parser{Fallback: fallback}
}

// ParseText returns the article title and text as a single
// whitespace-normalized string.
func (p *Parser) ParseText(body []byte, contentType string) (string, error) {
	text, err := extract(body)
	if err == nil && text != "" {
		return text, nil
	}
	if p.Fallback != nil {
		return p.Fallback.ParseText(body, contentType)
	}
	if err == nil {
		err = errors.New("no article content found")
	}
	return "", drugwatch.Errorf(drugwatch.EINVALID, "readability: %v", err)
}

func extract(body []byte) (string, error) {
	if len(body) == 0 {
		return "", errors.New("empty HTML input")
	}

	article, err := readability.FromReader(bytes.NewReader(body), nil)
	if err != nil {
		return "", err
	}

	words := strings.Fields(article.TextContent)
	if len(words) == 0 {
		return "", nil
	}
	return strings.Join(append(strings.Fields(article.Title), words...), " "), nil
}
