package mock

import (
	"context"

	"github.com/fwojciec/drugwatch"
)

var (
	_ drugwatch.Generator = (*Generator)(nil)
	_ drugwatch.Analyzer  = (*Analyzer)(nil)
)

// Generator is a mock implementation of drugwatch.Generator.
type Generator struct {
	GenerateFn func(ctx context.Context, prompt string) (string, error)
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.GenerateFn(ctx, prompt)
}

// Analyzer is a mock implementation of drugwatch.Analyzer.
type Analyzer struct {
	AnalyzeFn func(ctx context.Context, text, sourceURL string) *drugwatch.ApprovalRecord
}

func (a *Analyzer) Analyze(ctx context.Context, text, sourceURL string) *drugwatch.ApprovalRecord {
	return a.AnalyzeFn(ctx, text, sourceURL)
}
