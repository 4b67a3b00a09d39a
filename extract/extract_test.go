package extract_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fwojciec/drugwatch"
	"github.com/fwojciec/drugwatch/extract"
	"github.com/fwojciec/drugwatch/goquery"
	dwhttp "github.com/fwojciec/drugwatch/http"
	"github.com/fwojciec/drugwatch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("dispatches PDF content type to PDF parser", func(t *testing.T) {
		t.Parallel()

		e := &extract.Extractor{
			Fetcher: fetcherReturning("application/pdf", "%PDF-1.4"),
			HTML:    failingParser(t, "HTML"),
			PDF:     parserReturning("pdf text"),
			Logger:  discardLogger(),
		}

		got := e.Extract(context.Background(), "https://example.com/label.pdf")

		assert.Equal(t, "pdf text", got.Text)
		assert.Equal(t, drugwatch.FormatPDF, got.Format)
		assert.Equal(t, "https://example.com/label.pdf", got.URL)
	})

	t.Run("dispatches HTML content type to HTML parser", func(t *testing.T) {
		t.Parallel()

		e := &extract.Extractor{
			Fetcher: fetcherReturning("text/html; charset=utf-8", "<p>x</p>"),
			HTML:    parserReturning("html text"),
			PDF:     failingParser(t, "PDF"),
			Logger:  discardLogger(),
		}

		got := e.Extract(context.Background(), "https://example.com/news")

		assert.Equal(t, "html text", got.Text)
		assert.Equal(t, drugwatch.FormatHTML, got.Format)
	})

	t.Run("defaults to HTML when content type is missing", func(t *testing.T) {
		t.Parallel()

		e := &extract.Extractor{
			Fetcher: fetcherReturning("", "%PDF-1.4 looks like a pdf"),
			HTML:    parserReturning("html text"),
			PDF:     failingParser(t, "PDF"),
			Logger:  discardLogger(),
		}

		got := e.Extract(context.Background(), "https://example.com/file")

		assert.Equal(t, "html text", got.Text)
		assert.Equal(t, drugwatch.FormatHTML, got.Format)
	})

	t.Run("truncates text to max length", func(t *testing.T) {
		t.Parallel()

		huge := strings.Repeat("a", 10<<20)
		e := &extract.Extractor{
			Fetcher:       fetcherReturning("application/pdf", "%PDF"),
			PDF:           parserReturning(huge),
			Logger:        discardLogger(),
			MaxTextLength: 100,
		}

		got := e.Extract(context.Background(), "https://example.com/big.pdf")

		assert.Len(t, got.Text, 100)
	})

	t.Run("uses default max length when unset", func(t *testing.T) {
		t.Parallel()

		e := &extract.Extractor{
			Fetcher: fetcherReturning("text/html", ""),
			HTML:    parserReturning(strings.Repeat("é", extract.DefaultMaxTextLength+50)),
			Logger:  discardLogger(),
		}

		got := e.Extract(context.Background(), "https://example.com")

		assert.Equal(t, extract.DefaultMaxTextLength, utf8.RuneCountInString(got.Text))
	})

	t.Run("returns empty text and logs when fetch fails", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		e := &extract.Extractor{
			Fetcher: &mock.Fetcher{
				FetchFn: func(context.Context, string) (*drugwatch.Response, error) {
					return nil, errors.New("connection refused")
				},
			},
			HTML:   failingParser(t, "HTML"),
			PDF:    failingParser(t, "PDF"),
			Logger: slog.New(slog.NewTextHandler(&buf, nil)),
		}

		got := e.Extract(context.Background(), "https://example.com/down")

		require.NotNil(t, got)
		assert.True(t, got.IsEmpty())
		assert.Equal(t, drugwatch.FormatUnknown, got.Format)
		assert.Contains(t, buf.String(), "url=https://example.com/down")
		assert.Contains(t, buf.String(), "connection refused")
	})

	t.Run("returns empty text when parser fails", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		e := &extract.Extractor{
			Fetcher: fetcherReturning("application/pdf", "garbage"),
			PDF: &mock.TextParser{
				ParseTextFn: func([]byte, string) (string, error) {
					return "", drugwatch.Errorf(drugwatch.EINVALID, "malformed PDF")
				},
			},
			Logger: slog.New(slog.NewTextHandler(&buf, nil)),
		}

		got := e.Extract(context.Background(), "https://example.com/bad.pdf")

		assert.True(t, got.IsEmpty())
		assert.Equal(t, drugwatch.FormatPDF, got.Format)
		assert.Contains(t, buf.String(), "malformed PDF")
	})

	t.Run("retries failed fetches", func(t *testing.T) {
		t.Parallel()

		calls := 0
		e := &extract.Extractor{
			Fetcher: &mock.Fetcher{
				FetchFn: func(context.Context, string) (*drugwatch.Response, error) {
					calls++
					if calls < 3 {
						return nil, drugwatch.Errorf(drugwatch.EUNAVAILABLE, "HTTP 503")
					}
					return &drugwatch.Response{ContentType: "text/html"}, nil
				},
			},
			HTML:        parserReturning("ok"),
			Logger:      discardLogger(),
			RetryDelays: extract.FixedRetryDelays(2, 0),
		}

		got := e.Extract(context.Background(), "https://example.com")

		assert.Equal(t, "ok", got.Text)
		assert.Equal(t, 3, calls)
	})

	t.Run("extracts text from unreachable host as empty", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := server.URL
		server.Close()

		e := &extract.Extractor{
			Fetcher: dwhttp.NewFetcher(),
			HTML:    goquery.NewParser(),
			PDF:     failingParser(t, "PDF"),
			Logger:  discardLogger(),
		}

		assert.Empty(t, e.Extract(context.Background(), url).Text)
	})

	t.Run("extracts text from live HTML page", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><script>x()</script><body><h1>News</h1>\n\n<p>Drug X approved for indication Y</p></body></html>"))
		}))
		defer server.Close()

		e := &extract.Extractor{
			Fetcher: dwhttp.NewFetcher(),
			HTML:    goquery.NewParser(),
			PDF:     failingParser(t, "PDF"),
			Logger:  discardLogger(),
		}

		got := e.Extract(context.Background(), server.URL)

		assert.Equal(t, "News Drug X approved for indication Y", got.Text)
	})
}

func fetcherReturning(contentType, body string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (*drugwatch.Response, error) {
			return &drugwatch.Response{
				URL:         url,
				StatusCode:  http.StatusOK,
				ContentType: contentType,
				Body:        []byte(body),
			}, nil
		},
	}
}

func parserReturning(text string) *mock.TextParser {
	return &mock.TextParser{
		ParseTextFn: func([]byte, string) (string, error) {
			return text, nil
		},
	}
}

func failingParser(t *testing.T, name string) *mock.TextParser {
	return &mock.TextParser{
		ParseTextFn: func([]byte, string) (string, error) {
			t.Errorf("%s parser should not be called", name)
			return "", nil
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
