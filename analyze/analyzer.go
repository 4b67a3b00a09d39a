// Package analyze converts document text into approval records using a
// generative model. Model output is treated as untrusted: it is validated
// against the record schema and replaced by a fallback record whenever it
// cannot be used.
package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/drugwatch"
)

// DefaultMaxPromptLength is the default number of text runes sent to the model.
const DefaultMaxPromptLength = 4000

// Ensure Analyzer implements drugwatch.Analyzer at compile time.
var _ drugwatch.Analyzer = (*Analyzer)(nil)

// Analyzer implements drugwatch.Analyzer on top of a drugwatch.Generator.
type Analyzer struct {
	Generator drugwatch.Generator

	// Limiter paces generator calls under the drugwatch.ProviderGenerator key.
	// If nil, calls are not paced.
	Limiter drugwatch.RateLimiter

	Logger *slog.Logger

	// MaxPromptLength caps the text embedded in the prompt.
	// Zero means DefaultMaxPromptLength.
	MaxPromptLength int

	// Now returns the extraction time. Defaults to time.Now.
	Now func() time.Time
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(gen drugwatch.Generator, limiter drugwatch.RateLimiter, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		Generator: gen,
		Limiter:   limiter,
		Logger:    logger,
	}
}

// Analyze asks the generator to extract an approval record from text.
// The generator is called exactly once. Any failure produces a fallback
// record. SourceURL and ExtractionTimestamp are always set here, whatever
// the model returned.
func (a *Analyzer) Analyze(ctx context.Context, text, sourceURL string) *drugwatch.ApprovalRecord {
	record, err := a.extract(ctx, text, sourceURL)
	now := a.now()
	if err != nil {
		a.logger().Warn("analysis failed", "url", sourceURL, "err", err)
		return drugwatch.FallbackRecord(sourceURL, now)
	}

	record.SourceURL = sourceURL
	record.ExtractionTimestamp = now.Format(drugwatch.TimestampFormat)
	return record
}

func (a *Analyzer) extract(ctx context.Context, text, sourceURL string) (*drugwatch.ApprovalRecord, error) {
	prompt := BuildPrompt(text, sourceURL, a.maxPromptLength())

	if a.Limiter != nil {
		if err := a.Limiter.Wait(ctx, drugwatch.ProviderGenerator); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	resp, err := a.Generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	return ParseRecord(resp)
}

func (a *Analyzer) maxPromptLength() int {
	if a.MaxPromptLength <= 0 {
		return DefaultMaxPromptLength
	}
	return a.MaxPromptLength
}

func (a *Analyzer) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// BuildPrompt builds the extraction prompt. At most maxText runes of text
// are included.
func BuildPrompt(text, sourceURL string, maxText int) string {
	var sb strings.Builder
	sb.WriteString("Analyze this drug approval document and extract key information in JSON format.\n\n")
	sb.WriteString("Content: ")
	sb.WriteString(drugwatch.Truncate(text, maxText))
	sb.WriteString("\n\nRespond with exactly this JSON object, filling in every value:\n\n")
	fmt.Fprintf(&sb, `{
    "drug_name": "",
    "sponsor_company": "",
    "approval_date": "",
    "indication": "",
    "drug_type": "",
    "regulatory_action": "",
    "approval_status": "",
    "therapeutic_area": "",
    "source_agency": "",
    "source_url": %q,
    "confidence_score": 0.0
}`, sourceURL)
	fmt.Fprintf(&sb, "\n\nIf information is unavailable, use %q. ", drugwatch.NotSpecified)
	sb.WriteString("confidence_score is a number between 0 and 1 describing how certain the extraction is.\n")
	return sb.String()
}
