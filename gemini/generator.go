// Package gemini implements drugwatch.Generator using Google Gemini.
package gemini

import (
	"context"
	"time"

	"github.com/fwojciec/drugwatch"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Ensure Generator implements drugwatch.Generator at compile time.
var _ drugwatch.Generator = (*Generator)(nil)

// Generator sends prompts to a Gemini model.
type Generator struct {
	client *genai.Client
	model  string

	// Timeout bounds each GenerateContent call. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// NewGenerator creates a new Generator. An empty model selects DefaultModel.
func NewGenerator(client *genai.Client, model string) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{client: client, model: model}
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	return g.model
}

// Generate returns the model's text response to prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", drugwatch.Errorf(drugwatch.EINVALID, "prompt required")
	}
	if g.client == nil {
		return "", drugwatch.Errorf(drugwatch.EINTERNAL, "gemini client not configured")
	}

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", drugwatch.Errorf(drugwatch.EINTERNAL, "gemini returned nil result")
	}

	text := result.Text()
	if text == "" {
		return "", drugwatch.Errorf(drugwatch.EINTERNAL, "gemini returned empty response")
	}
	return text, nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.1)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You extract facts about regulatory drug approvals from documents. Answer with a single JSON object and nothing else. Use only information present in the document.",
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
}
