package main_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/drugwatch"
	main "github.com/fwojciec/drugwatch/cmd/drugwatch"
	"github.com/fwojciec/drugwatch/fs"
	"github.com/fwojciec/drugwatch/mock"
	"github.com/fwojciec/drugwatch/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const approvalJSON = `{
	"drug_name": "Drug X",
	"sponsor_company": "Example Pharma",
	"approval_date": "2026-09-30",
	"indication": "indication Y",
	"drug_type": "Biologic",
	"regulatory_action": "BLA approval",
	"approval_status": "Approved",
	"therapeutic_area": "Oncology",
	"source_agency": "FDA",
	"confidence_score": 0.9
}`

func noEnv(string) string { return "" }

func fakeEnv(key string) string {
	switch key {
	case "SERPAPI_API_KEY", "GEMINI_API_KEY":
		return "test-key"
	}
	return ""
}

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.Getenv = noEnv

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--help"}, stdout, stderr)

	require.NoError(t, err)
	for _, flag := range []string{"--agency", "--window", "--count", "--concurrency", "--main-content", "--output-dir", "--verbose"} {
		assert.Contains(t, stdout.String(), flag, "Help should mention %s", flag)
	}
}

func TestMain_Run_MissingKeys(t *testing.T) {
	t.Parallel()

	t.Run("fails without search key before any call", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.Getenv = noEnv
		m.Generator = &mock.Generator{
			GenerateFn: func(context.Context, string) (string, error) {
				t.Error("generator should not be called")
				return "", nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"--output-dir", t.TempDir()}, stdout, stderr)

		require.Error(t, err)
		assert.Equal(t, drugwatch.EINVALID, drugwatch.ErrorCode(err))
		assert.Contains(t, err.Error(), "SERPAPI_API_KEY")
		assert.Contains(t, stderr.String(), "Hint:")
		assert.Empty(t, stdout.String())
	})

	t.Run("fails without model key before any call", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.Getenv = noEnv
		m.Searcher = &mock.Searcher{
			SearchFn: func(context.Context, drugwatch.SearchQuery) ([]*drugwatch.SearchHit, error) {
				t.Error("searcher should not be called")
				return nil, nil
			},
		}

		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{}, &bytes.Buffer{}, stderr)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "GEMINI_API_KEY")
		assert.Contains(t, stderr.String(), "aistudio.google.com")
	})
}

func TestMain_Run_InvalidFlags(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{
		{"--count", "0"},
		{"--concurrency", "0"},
		{"--fetch-retries=-1"},
		{"--main-content", "bogus"},
		{"--timeout", "0s"},
	} {
		m := main.NewMain()
		m.Getenv = fakeEnv

		err := m.Run(context.Background(), args, &bytes.Buffer{}, &bytes.Buffer{})

		assert.Error(t, err, "args %v", args)
	}
}

func TestMain_Run_EndToEnd(t *testing.T) {
	t.Parallel()

	t.Run("writes one record per document with text", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/approval":
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				_, _ = w.Write([]byte("<html><body><p>FDA approves Drug X for indication Y.</p></body></html>"))
			case "/empty":
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte("<html><body><script>var x;</script></body></html>"))
			default:
				http.NotFound(w, r)
			}
		}))
		t.Cleanup(srv.Close)

		var query drugwatch.SearchQuery
		m := main.NewMain()
		m.Getenv = noEnv
		m.Searcher = &mock.Searcher{
			SearchFn: func(_ context.Context, q drugwatch.SearchQuery) ([]*drugwatch.SearchHit, error) {
				query = q
				return []*drugwatch.SearchHit{
					{URL: srv.URL + "/approval", Title: "FDA approves Drug X", Snippet: "snippet", Position: 1},
					{URL: srv.URL + "/empty", Title: "Empty", Position: 2},
					{URL: srv.URL + "/missing", Title: "Missing", Position: 3},
				}, nil
			},
		}
		m.Generator = &mock.Generator{
			GenerateFn: func(context.Context, string) (string, error) {
				return approvalJSON, nil
			},
		}

		dir := t.TempDir()
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{
			"--agency", "ema.europa.eu",
			"--window", "w",
			"--count", "3",
			"--search-delay", "0s",
			"--model-delay", "0s",
			"--output-dir", dir,
			"--output", "approvals.csv",
		}, stdout, stderr)

		require.NoError(t, err)
		assert.Equal(t, drugwatch.BuildQuery("ema.europa.eu"), query.Query)
		assert.Equal(t, "w", query.Recency)
		assert.Equal(t, 3, query.Count)
		assert.Contains(t, stdout.String(), "Saved 1 records")

		f, err := os.Open(filepath.Join(dir, "approvals.csv"))
		require.NoError(t, err)
		defer f.Close()

		records, err := fs.ReadRecords(f)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Drug X", records[0].DrugName)
		assert.Equal(t, srv.URL+"/approval", records[0].SourceURL)
		assert.Equal(t, "FDA approves Drug X", records[0].SearchTitle)
		assert.Equal(t, 1, records[0].SearchPosition)
	})

	t.Run("reports no results without writing a file", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.Getenv = noEnv
		m.Searcher = &mock.Searcher{
			SearchFn: func(context.Context, drugwatch.SearchQuery) ([]*drugwatch.SearchHit, error) {
				return nil, nil
			},
		}
		m.Generator = &mock.Generator{
			GenerateFn: func(context.Context, string) (string, error) {
				t.Error("generator should not be called")
				return "", nil
			},
		}

		dir := filepath.Join(t.TempDir(), "outputs")
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"--output-dir", dir, "--search-delay", "0s"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No results found")
		assert.NoDirExists(t, dir)
	})

	t.Run("appends logs to log file", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.Getenv = noEnv
		m.Searcher = &mock.Searcher{
			SearchFn: func(context.Context, drugwatch.SearchQuery) ([]*drugwatch.SearchHit, error) {
				return nil, nil
			},
		}
		m.Generator = &mock.Generator{}
		t.Cleanup(func() { _ = m.Close() })

		logFile := filepath.Join(t.TempDir(), "run.log")

		err := m.Run(context.Background(), []string{"--log-file", logFile, "--search-delay", "0s"}, &bytes.Buffer{}, &bytes.Buffer{})
		require.NoError(t, err)
		require.NoError(t, m.Close())

		content, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(content), "run_id=")
	})

	t.Run("writes SQLite output when selected", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body><p>FDA approves Drug X for indication Y.</p></body></html>"))
		}))
		t.Cleanup(srv.Close)

		m := main.NewMain()
		m.Getenv = noEnv
		m.Searcher = &mock.Searcher{
			SearchFn: func(context.Context, drugwatch.SearchQuery) ([]*drugwatch.SearchHit, error) {
				return []*drugwatch.SearchHit{{URL: srv.URL + "/approval", Position: 1}}, nil
			},
		}
		m.Generator = &mock.Generator{
			GenerateFn: func(context.Context, string) (string, error) {
				return approvalJSON, nil
			},
		}

		dir := t.TempDir()
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{
			"--format", "sqlite",
			"--output-dir", dir,
			"--output", "approvals.db",
			"--search-delay", "0s",
			"--model-delay", "0s",
		}, stdout, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), filepath.Join(dir, "approvals.db"))

		db := sqlite.NewDB(filepath.Join(dir, "approvals.db"))
		require.NoError(t, db.Open())
		defer db.Close()

		records, err := sqlite.ReadRecords(context.Background(), db)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Drug X", records[0].DrugName)
	})
}
