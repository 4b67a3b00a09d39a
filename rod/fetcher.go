// Package rod implements a rendering drugwatch.Fetcher backed by headless
// Chrome. Agency pages that build their announcement text with JavaScript
// yield little text over plain HTTP; this fetcher returns the rendered DOM
// for HTML documents instead.
package rod

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/drugwatch"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultRenderTimeout bounds navigation and rendering of a single page.
const DefaultRenderTimeout = 30 * time.Second

// renderedContentType is reported for documents rendered by the browser.
const renderedContentType = "text/html; charset=utf-8"

// Ensure Fetcher implements drugwatch.Fetcher at compile time.
var _ drugwatch.Fetcher = (*Fetcher)(nil)

// Fetcher fetches documents with Next and re-renders HTML documents in a
// browser. PDFs and failed responses are returned as Next produced them.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	// Next performs the initial request that establishes status and
	// content type.
	Next drugwatch.Fetcher

	timeout time.Duration

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRenderTimeout sets the per-page render timeout.
// Defaults to DefaultRenderTimeout if not specified.
func WithRenderTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher launches a headless Chrome browser and returns a Fetcher that
// renders HTML documents fetched by next. Close must be called when the
// Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(next drugwatch.Fetcher, opts ...Option) (*Fetcher, error) {
	f := &Fetcher{Next: next, timeout: DefaultRenderTimeout}
	for _, opt := range opts {
		opt(f)
	}

	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	f.browser = browser
	f.launcher = l
	return f, nil
}

// Fetch returns the document at url, with the body of HTML documents
// replaced by the rendered DOM.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*drugwatch.Response, error) {
	resp, err := f.Next.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if drugwatch.DetectFormat(resp.ContentType) == drugwatch.FormatPDF {
		return resp, nil
	}

	browser := f.currentBrowser()
	if browser == nil {
		return resp, nil
	}

	html, err := f.render(ctx, browser, url)
	if err != nil {
		return nil, drugwatch.Errorf(drugwatch.EUNAVAILABLE, "rendering %s: %v", url, err)
	}

	return &drugwatch.Response{
		URL:         resp.URL,
		StatusCode:  resp.StatusCode,
		ContentType: renderedContentType,
		Body:        []byte(html),
	}, nil
}

func (f *Fetcher) render(ctx context.Context, browser *rod.Browser, url string) (string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	return page.HTML()
}

func (f *Fetcher) currentBrowser() *rod.Browser {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.browser
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var err error
	if f.browser != nil {
		err = f.browser.Close()
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Kill()
		f.launcher = nil
	}
	return err
}
