package drugwatch

import "context"

// Generator is a generative text model.
type Generator interface {
	// Generate returns the model's free-form response to prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Analyzer converts document text into an ApprovalRecord.
type Analyzer interface {
	// Analyze never returns nil. When extraction fails it returns a
	// fallback record for sourceURL.
	Analyze(ctx context.Context, text, sourceURL string) *ApprovalRecord
}
