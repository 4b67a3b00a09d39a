package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/drugwatch"
	"github.com/fwojciec/drugwatch/track"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Tracker *track.Tracker
	Writer  drugwatch.RecordWriter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Agency string `short:"a" env:"DRUGWATCH_AGENCY" default:"fda.gov" help:"Agency domain to search (templates for ${known_agencies}; others use a generic query)"`
	Window string `short:"w" env:"DRUGWATCH_WINDOW" default:"m" help:"Search recency window passed to the provider (d, w, m, y)"`
	Count  int    `short:"n" default:"10" help:"Number of search results to request"`

	Timeout         time.Duration `default:"30s" help:"Timeout for each search, fetch and model call"`
	SearchDelay     time.Duration `default:"${default_search_wait}" help:"Minimum interval between search calls"`
	ModelDelay      time.Duration `default:"${default_model_wait}" help:"Minimum interval between model calls"`
	MaxTextLength   int           `default:"${default_text_length}" help:"Maximum characters of extracted text per document"`
	MaxPromptLength int           `default:"${default_prompt_len}" help:"Maximum characters of document text embedded in the prompt"`
	Concurrency     int           `short:"c" default:"1" help:"Number of results processed at once"`
	FetchRetries    int           `default:"0" help:"Retries for failed document fetches"`
	Render          bool          `help:"Render HTML pages in headless Chrome before extracting text"`
	MainContent     string        `enum:"off,trafilatura,readability" default:"off" help:"Main-content extraction for HTML pages (off, trafilatura, readability)"`

	Model string `env:"DRUGWATCH_MODEL" default:"${default_model}" help:"Gemini model name"`

	OutputDir string `short:"o" default:"${default_output_dir}" help:"Directory for output files"`
	Output    string `help:"Output file name (default: drug_approvals_<timestamp>.<format>)"`
	Format    string `short:"f" enum:"csv,sqlite" default:"csv" help:"Output format (csv, sqlite)"`
	LogFile   string `help:"Also append logs to this file"`
	Verbose   bool   `short:"v" help:"Enable debug logging"`
}

// Validate checks flag values after parsing.
func (c *CLI) Validate() error {
	switch {
	case c.Count < 1:
		return drugwatch.Errorf(drugwatch.EINVALID, "--count must be at least 1")
	case c.Concurrency < 1:
		return drugwatch.Errorf(drugwatch.EINVALID, "--concurrency must be at least 1")
	case c.MaxTextLength < 1:
		return drugwatch.Errorf(drugwatch.EINVALID, "--max-text-length must be at least 1")
	case c.MaxPromptLength < 1:
		return drugwatch.Errorf(drugwatch.EINVALID, "--max-prompt-length must be at least 1")
	case c.FetchRetries < 0:
		return drugwatch.Errorf(drugwatch.EINVALID, "--fetch-retries must not be negative")
	case c.Timeout <= 0:
		return drugwatch.Errorf(drugwatch.EINVALID, "--timeout must be positive")
	case c.SearchDelay < 0 || c.ModelDelay < 0:
		return drugwatch.Errorf(drugwatch.EINVALID, "delays must not be negative")
	}
	return nil
}
