// Package track orchestrates an approval tracking run. It issues one
// search, extracts and analyzes every hit, and collects the resulting
// records in search rank order.
package track

import (
	"context"
	"log/slog"

	"github.com/fwojciec/drugwatch"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Tracker runs the search → extract → analyze pipeline.
type Tracker struct {
	Searcher  drugwatch.Searcher
	Extractor drugwatch.ContentExtractor
	Analyzer  drugwatch.Analyzer

	// RateLimiter paces search calls under the drugwatch.ProviderSearch key.
	// If nil, searches are not paced.
	RateLimiter drugwatch.RateLimiter

	Logger *slog.Logger

	// Concurrency is the number of hits processed at once.
	// Values below 1 mean sequential processing.
	Concurrency int
}

// Result holds the outcome of a run.
type Result struct {
	RunID   string
	Hits    int
	Skipped int
	Records []*drugwatch.ApprovalRecord
}

// ProgressEvent reports progress during a run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Record    *drugwatch.ApprovalRecord
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressSkipped
	ProgressFinished
)

// ProgressFunc is a callback for reporting run progress.
// It is never called concurrently.
type ProgressFunc func(event ProgressEvent)

// hitResult holds the outcome of processing a single hit.
type hitResult struct {
	index  int
	url    string
	record *drugwatch.ApprovalRecord
}

// Run searches for q and returns one record per hit with extractable text.
// Search failures produce an empty result. The only error returned is the
// context's, when the run was canceled.
func (t *Tracker) Run(ctx context.Context, q drugwatch.SearchQuery, progress ProgressFunc) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	logger := t.logger().With("run_id", result.RunID)

	hits, err := t.search(ctx, q)
	if err != nil {
		logger.Error("search failed", "query", q.Query, "err", err)
		hits = nil
	}
	result.Hits = len(hits)
	logger.Info("search complete", "query", q.Query, "recency", q.Recency, "hits", len(hits))

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: len(hits)})
	}

	concurrency := t.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	resultCh := make(chan hitResult, len(hits))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, hit := range hits {
			h := *hit
			if h.Position == 0 {
				h.Position = i + 1
			}
			g.Go(func() error {
				resultCh <- hitResult{
					index:  i,
					url:    h.URL,
					record: t.processHit(gctx, logger, &h),
				}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	// Collect results, then restore search order.
	records := make([]*drugwatch.ApprovalRecord, len(hits))
	completed := 0
	for r := range resultCh {
		completed++
		records[r.index] = r.record

		if progress == nil {
			continue
		}
		typ := ProgressCompleted
		if r.record == nil {
			typ = ProgressSkipped
		}
		progress(ProgressEvent{
			Type:      typ,
			Completed: completed,
			Total:     len(hits),
			URL:       r.url,
			Record:    r.record,
		})
	}

	for _, r := range records {
		if r == nil {
			result.Skipped++
			continue
		}
		result.Records = append(result.Records, r)
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: len(hits), Total: len(hits)})
	}
	logger.Info("run complete", "hits", result.Hits, "records", len(result.Records), "skipped", result.Skipped)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (t *Tracker) search(ctx context.Context, q drugwatch.SearchQuery) ([]*drugwatch.SearchHit, error) {
	if t.RateLimiter != nil {
		if err := t.RateLimiter.Wait(ctx, drugwatch.ProviderSearch); err != nil {
			return nil, err
		}
	}
	return t.Searcher.Search(ctx, q)
}

// processHit returns the record for hit, or nil when the hit has no text.
func (t *Tracker) processHit(ctx context.Context, logger *slog.Logger, hit *drugwatch.SearchHit) *drugwatch.ApprovalRecord {
	if ctx.Err() != nil {
		return nil
	}

	text := t.Extractor.Extract(ctx, hit.URL)
	if text.IsEmpty() {
		logger.Info("skipping hit without text", "url", hit.URL, "position", hit.Position)
		return nil
	}

	record := t.Analyzer.Analyze(ctx, text.Text, hit.URL)
	record.SetProvenance(hit)
	logger.Debug("hit analyzed",
		"url", hit.URL,
		"position", hit.Position,
		"format", text.Format,
		"chars", len(text.Text),
		"fallback", record.IsFallback(),
	)
	return record
}

func (t *Tracker) logger() *slog.Logger {
	if t.Logger == nil {
		return slog.Default()
	}
	return t.Logger
}
