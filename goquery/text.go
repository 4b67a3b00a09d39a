// Package goquery implements HTML text extraction using goquery.
package goquery

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/drugwatch"
	"golang.org/x/net/html/charset"
)

// Ensure Parser implements drugwatch.TextParser at compile time.
var _ drugwatch.TextParser = (*Parser)(nil)

// ignoredElements never contribute visible text.
const ignoredElements = "script, style, noscript, template"

// Parser extracts the visible text of an HTML document.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseText strips non-content elements and returns the document text as a
// single whitespace-normalized string.
func (p *Parser) ParseText(body []byte, contentType string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(decode(body, contentType))
	if err != nil {
		return "", drugwatch.Errorf(drugwatch.EINVALID, "failed to parse HTML: %v", err)
	}

	return SelectionText(doc.Selection), nil
}

// decode returns body as UTF-8. A charset from a BOM or contentType is
// always applied. A guessed charset (meta prescan or the windows-1252
// default) is applied only when body is not valid UTF-8, since the guess
// sees just the first 1024 bytes.
func decode(body []byte, contentType string) io.Reader {
	e, _, certain := charset.DetermineEncoding(body, contentType)
	if !certain && utf8.Valid(body) {
		return bytes.NewReader(body)
	}
	return e.NewDecoder().Reader(bytes.NewReader(body))
}

// SelectionText removes non-content elements from sel and returns its
// text with all whitespace runs collapsed to single spaces.
func SelectionText(sel *goquery.Selection) string {
	sel.Find(ignoredElements).Remove()
	return NormalizeSpace(sel.Text())
}

// NormalizeSpace collapses every whitespace run in s to a single space and
// trims both ends.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
