package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/drugwatch"
)

// Ensure LoggingGenerator implements drugwatch.Generator.
var _ drugwatch.Generator = (*LoggingGenerator)(nil)

// LoggingGenerator wraps a Generator with debug logging.
// Prompt and response bodies are not logged, only their sizes.
type LoggingGenerator struct {
	next   drugwatch.Generator
	logger *slog.Logger
}

// NewLoggingGenerator creates a new LoggingGenerator.
func NewLoggingGenerator(next drugwatch.Generator, logger *slog.Logger) *LoggingGenerator {
	return &LoggingGenerator{next: next, logger: logger}
}

// Generate delegates to the wrapped generator and logs the operation.
func (g *LoggingGenerator) Generate(ctx context.Context, prompt string) (resp string, err error) {
	defer func(begin time.Time) {
		g.logger.Debug("generate",
			"prompt_chars", len(prompt),
			"response_chars", len(resp),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return g.next.Generate(ctx, prompt)
}
