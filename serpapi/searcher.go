// Package serpapi implements drugwatch.Searcher using the SerpApi Google
// search endpoint.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fwojciec/drugwatch"
)

// DefaultBaseURL is the SerpApi search endpoint.
const DefaultBaseURL = "https://serpapi.com/search.json"

// DefaultTimeout bounds a single search request.
const DefaultTimeout = 30 * time.Second

// Ensure Searcher implements drugwatch.Searcher at compile time.
var _ drugwatch.Searcher = (*Searcher)(nil)

// Searcher queries Google through SerpApi.
type Searcher struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(s *Searcher) {
		s.baseURL = u
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Searcher) {
		s.client = c
	}
}

// NewSearcher creates a new Searcher authenticated with apiKey.
func NewSearcher(apiKey string, opts ...Option) *Searcher {
	s := &Searcher{
		client:  &http.Client{Timeout: DefaultTimeout},
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// response is the subset of the SerpApi response used here.
type response struct {
	Error          string          `json:"error"`
	OrganicResults []organicResult `json:"organic_results"`
}

type organicResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
}

// Search runs q and returns the organic results in rank order.
// Results without a link are dropped. Positions are the provider's rank
// among all organic results, or the 1-based index when it reports none.
func (s *Searcher) Search(ctx context.Context, q drugwatch.SearchQuery) ([]*drugwatch.SearchHit, error) {
	if q.Query == "" {
		return nil, drugwatch.Errorf(drugwatch.EINVALID, "search query required")
	}
	if s.apiKey == "" {
		return nil, drugwatch.Errorf(drugwatch.EINVALID, "SerpApi key required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+BuildParams(q, s.apiKey).Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, drugwatch.Errorf(drugwatch.EUNAVAILABLE, "serpapi: unexpected status code %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	if r.Error != "" {
		return nil, drugwatch.Errorf(drugwatch.EUNAVAILABLE, "serpapi: %s", r.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, drugwatch.Errorf(drugwatch.EUNAVAILABLE, "serpapi: unexpected status code %d", resp.StatusCode)
	}

	hits := make([]*drugwatch.SearchHit, 0, len(r.OrganicResults))
	for i, res := range r.OrganicResults {
		if res.Link == "" {
			continue
		}
		position := res.Position
		if position <= 0 {
			position = i + 1
		}
		hits = append(hits, &drugwatch.SearchHit{
			URL:      res.Link,
			Title:    res.Title,
			Snippet:  res.Snippet,
			Position: position,
		})
	}
	return hits, nil
}

// BuildParams returns the query parameters for q.
func BuildParams(q drugwatch.SearchQuery, apiKey string) url.Values {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", q.Query)
	params.Set("api_key", apiKey)
	params.Set("safe", "active")
	if q.Count > 0 {
		params.Set("num", strconv.Itoa(q.Count))
	}
	if q.Recency != "" {
		params.Set("tbs", "qdr:"+q.Recency)
	}
	return params
}
