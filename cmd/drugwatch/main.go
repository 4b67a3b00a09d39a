package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/drugwatch"
	"github.com/fwojciec/drugwatch/analyze"
	"github.com/fwojciec/drugwatch/extract"
	"github.com/fwojciec/drugwatch/fs"
	"github.com/fwojciec/drugwatch/gemini"
	"github.com/fwojciec/drugwatch/goquery"
	dwhttp "github.com/fwojciec/drugwatch/http"
	"github.com/fwojciec/drugwatch/pdf"
	"github.com/fwojciec/drugwatch/readability"
	"github.com/fwojciec/drugwatch/rod"
	"github.com/fwojciec/drugwatch/serpapi"
	"github.com/fwojciec/drugwatch/sqlite"
	dwslog "github.com/fwojciec/drugwatch/slog"
	"github.com/fwojciec/drugwatch/track"
	"github.com/fwojciec/drugwatch/trafilatura"
	"github.com/joho/godotenv"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	m := NewMain()

	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	_ = m.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Getenv looks up API keys. Defaults to os.Getenv.
	Getenv func(key string) string

	// Services for end-to-end testing. When set they replace the SerpApi
	// searcher, the HTTP fetcher and the Gemini generator, and the
	// corresponding API key is not required.
	Searcher  drugwatch.Searcher
	Fetcher   drugwatch.Fetcher
	Generator drugwatch.Generator

	logFile *os.File
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Getenv: os.Getenv}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.logFile != nil {
		err := m.logFile.Close()
		m.logFile = nil
		return err
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("drugwatch"),
		kong.Description("Track recent drug approvals announced by regulatory agencies"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Vars{
			"default_model":       gemini.DefaultModel,
			"default_output_dir":  fs.DefaultDir,
			"default_text_length": fmt.Sprint(extract.DefaultMaxTextLength),
			"default_prompt_len":  fmt.Sprint(analyze.DefaultMaxPromptLength),
			"default_search_wait": track.DefaultSearchInterval.String(),
			"default_model_wait":  track.DefaultGeneratorInterval.String(),
			"known_agencies":      strings.Join(drugwatch.KnownAgencies(), ", "),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	// Validate keys before anything talks to the network.
	serpKey, geminiKey, err := m.apiKeys(stderr)
	if err != nil {
		return err
	}

	logger, err := m.openLogger(cli, stderr)
	if err != nil {
		return err
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
		Writer: newRecordWriter(cli),
	}

	searcher := m.Searcher
	if searcher == nil {
		searcher = serpapi.NewSearcher(serpKey, serpapi.WithHTTPClient(&http.Client{Timeout: cli.Timeout}))
	}

	fetcher := m.Fetcher
	if fetcher == nil {
		fetcher = dwhttp.NewFetcher(dwhttp.WithTimeout(cli.Timeout))
	}
	if cli.Render {
		renderer, err := rod.NewFetcher(fetcher, rod.WithRenderTimeout(cli.Timeout))
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed to use --render")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer renderer.Close()
		fetcher = renderer
	}

	generator := m.Generator
	if generator == nil {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  geminiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		gen := gemini.NewGenerator(client, cli.Model)
		gen.Timeout = cli.Timeout
		generator = gen
	}

	var html drugwatch.TextParser = goquery.NewParser()
	switch cli.MainContent {
	case "trafilatura":
		html = trafilatura.NewParser(html)
	case "readability":
		html = readability.NewParser(html)
	}

	limiter := track.NewProviderLimiter(map[string]time.Duration{
		drugwatch.ProviderSearch:    cli.SearchDelay,
		drugwatch.ProviderGenerator: cli.ModelDelay,
	})

	analyzer := analyze.NewAnalyzer(dwslog.NewLoggingGenerator(generator, logger), limiter, logger)
	analyzer.MaxPromptLength = cli.MaxPromptLength

	deps.Tracker = &track.Tracker{
		Searcher: dwslog.NewLoggingSearcher(searcher, logger),
		Extractor: &extract.Extractor{
			Fetcher:       dwslog.NewLoggingFetcher(fetcher, logger),
			HTML:          html,
			PDF:           pdf.NewParser(),
			Logger:        logger,
			MaxTextLength: cli.MaxTextLength,
			RetryDelays:   extract.FixedRetryDelays(cli.FetchRetries, fetchRetryDelay),
		},
		Analyzer:    analyzer,
		RateLimiter: limiter,
		Logger:      logger,
		Concurrency: cli.Concurrency,
	}

	return cli.Run(deps)
}

// newRecordWriter returns the sink selected by --format.
func newRecordWriter(cli *CLI) drugwatch.RecordWriter {
	if cli.Format == "sqlite" {
		return sqlite.NewWriter(cli.OutputDir, cli.Output)
	}
	return fs.NewWriter(cli.OutputDir, cli.Output)
}

// fetchRetryDelay is the wait between fetch attempts when --fetch-retries is set.
const fetchRetryDelay = time.Second

// apiKeys returns the SerpApi and Gemini keys, failing with a hint when a
// key needed by a non-injected service is missing.
func (m *Main) apiKeys(stderr io.Writer) (serpKey, geminiKey string, err error) {
	getenv := m.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	if m.Searcher == nil {
		if serpKey = getenv("SERPAPI_API_KEY"); serpKey == "" {
			fmt.Fprintln(stderr, "Hint: Set SERPAPI_API_KEY in the environment or a .env file. Get a key at https://serpapi.com/manage-api-key")
			return "", "", drugwatch.Errorf(drugwatch.EINVALID, "SERPAPI_API_KEY not set")
		}
	}
	if m.Generator == nil {
		if geminiKey = getenv("GEMINI_API_KEY"); geminiKey == "" {
			fmt.Fprintln(stderr, "Hint: Set GEMINI_API_KEY in the environment or a .env file. Get a key at https://aistudio.google.com/apikey")
			return "", "", drugwatch.Errorf(drugwatch.EINVALID, "GEMINI_API_KEY not set")
		}
	}
	return serpKey, geminiKey, nil
}

// openLogger builds the run logger. Logs go to stderr and, when --log-file
// is set, are appended to that file as well.
func (m *Main) openLogger(cli *CLI, stderr io.Writer) (*slog.Logger, error) {
	out := stderr
	if cli.LogFile != "" {
		f, err := os.OpenFile(cli.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %q: %w", cli.LogFile, err)
		}
		m.logFile = f
		out = io.MultiWriter(stderr, f)
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), nil
}
