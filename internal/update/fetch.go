package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	DefaultEndpoint = "https://api.github.com/repos/fuyutsuki/Texter/releases"
	DefaultTimeout  = 10 * time.Second
	DefaultRetries  = 2

	maxBodySize = 4 << 20
)

var (
	ErrTransport         = errors.New("transport failure")
	ErrMalformedResponse = errors.New("malformed response")
	ErrNoReleases        = errors.New("no releases published")
)

// Release is one entry of the release feed.
type Release struct {
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// Fetcher retrieves the most recent release. A nil release with a nil error
// means the feed is empty.
type Fetcher interface {
	Latest(ctx context.Context) (*Release, error)
}

// HTTPFetcher reads a JSON array of releases, newest first.
type HTTPFetcher struct {
	endpoint  string
	userAgent string
	client    *retryablehttp.Client
}

type HTTPFetcherOpt func(*HTTPFetcher)

// WithTimeout bounds each request attempt.
func WithTimeout(d time.Duration) HTTPFetcherOpt {
	return func(f *HTTPFetcher) {
		f.client.HTTPClient.Timeout = d
	}
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(n int) HTTPFetcherOpt {
	return func(f *HTTPFetcher) {
		f.client.RetryMax = n
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) HTTPFetcherOpt {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

func NewHTTPFetcher(endpoint string, opts ...HTTPFetcherOpt) *HTTPFetcher {
	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = DefaultTimeout
	client.RetryMax = DefaultRetries
	client.RetryWaitMax = 5 * time.Second
	client.Logger = slog.Default()

	f := &HTTPFetcher{
		endpoint:  endpoint,
		userAgent: "go-texter",
		client:    client,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// HTTPClient exposes the underlying client, mainly for tests.
func (f *HTTPFetcher) HTTPClient() *http.Client {
	return f.client.HTTPClient
}

func (f *HTTPFetcher) Latest(ctx context.Context) (*Release, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, f.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrTransport, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}

	var releases []Release
	err = json.Unmarshal(body, &releases)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if len(releases) == 0 {
		return nil, nil
	}

	return &releases[0], nil
}
