package drugwatch

import "context"

// Response is the raw result of fetching a URL.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher retrieves documents over the network.
type Fetcher interface {
	// Fetch performs a GET request for the URL.
	// Non-success statuses are returned as errors.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*Response, error)
}
