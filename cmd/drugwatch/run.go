package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/drugwatch"
	"github.com/fwojciec/drugwatch/track"
)

// Run executes a tracking run and saves the records.
func (c *CLI) Run(deps *Dependencies) error {
	q := drugwatch.NewSearchQuery(c.Agency, c.Window, c.Count)
	fmt.Fprintf(deps.Stdout, "Searching for %s approvals (window %q)\n", c.Agency, c.Window)

	result, err := deps.Tracker.Run(deps.Ctx, q, progressPrinter(deps.Stdout, deps.Stderr))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: run interrupted: %v\n", err)
		return err
	}

	if len(result.Records) == 0 {
		fmt.Fprintln(deps.Stdout, "No results found")
		return nil
	}

	path, err := deps.Writer.WriteRecords(deps.Ctx, result.Records)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error saving results: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Saved %d records to %s (%d skipped, %d failed analysis)\n",
		len(result.Records), path, result.Skipped, countFallbacks(result.Records))
	return nil
}

func progressPrinter(stdout, stderr io.Writer) track.ProgressFunc {
	return func(event track.ProgressEvent) {
		switch event.Type {
		case track.ProgressStarted:
			fmt.Fprintf(stdout, "  Found %d results\n", event.Total)
		case track.ProgressCompleted:
			fmt.Fprintf(stdout, "  [%d/%d] %s (%s)\n", event.Completed, event.Total, event.Record.DrugName, event.URL)
		case track.ProgressSkipped:
			fmt.Fprintf(stderr, "  [%d/%d] skip %s: no text\n", event.Completed, event.Total, event.URL)
		case track.ProgressFinished:
			// Summary printed after the run completes
		}
	}
}

func countFallbacks(records []*drugwatch.ApprovalRecord) int {
	n := 0
	for _, r := range records {
		if r.IsFallback() {
			n++
		}
	}
	return n
}
