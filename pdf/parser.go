// Package pdf implements PDF text extraction using github.com/ledongthuc/pdf.
package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/fwojciec/drugwatch"
	"github.com/ledongthuc/pdf"
)

// Ensure Parser implements drugwatch.TextParser at compile time.
var _ drugwatch.TextParser = (*Parser)(nil)

// Parser extracts text from PDF documents page by page.
//
// The PDF library reads from a file, so each call writes the body to its
// own temporary file which is removed before ParseText returns.
type Parser struct {
	// TempDir is the directory for temporary files.
	// Empty means the system default.
	TempDir string
}

// NewParser creates a new Parser using the system temp directory.
func NewParser() *Parser {
	return &Parser{}
}

// ParseText returns the text of every page concatenated in page order.
func (p *Parser) ParseText(body []byte, _ string) (text string, err error) {
	if len(body) == 0 {
		return "", drugwatch.Errorf(drugwatch.EINVALID, "empty PDF body")
	}

	path, err := p.writeTemp(body)
	if err != nil {
		return "", err
	}
	defer os.Remove(path)

	// The library panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = drugwatch.Errorf(drugwatch.EINVALID, "malformed PDF: %v", r)
		}
	}()

	return readText(path)
}

func (p *Parser) writeTemp(body []byte) (string, error) {
	f, err := os.CreateTemp(p.TempDir, "drugwatch-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return path, nil
}

func readText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", drugwatch.Errorf(drugwatch.EINVALID, "failed to open PDF: %v", err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", drugwatch.Errorf(drugwatch.EINVALID, "failed to read page %d: %v", i, err)
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
