package poller

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// userAgent identifies the monitor to the polled server.
const userAgent = "rspamd-mon"

// maxBodySize caps statistics payload reads at 1MB. Real payloads are a
// few KB; anything bigger is not a stat endpoint.
const maxBodySize = 1 << 20

// HTTPFetcher retrieves statistics payloads over HTTP.
type HTTPFetcher struct {
	url    string
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with a per-request timeout.
func NewHTTPFetcher(url string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch performs one GET against the statistics endpoint.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", f.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("get %s: unexpected status %d", f.url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// Interface compliance checked at compile time.
var _ Fetcher = (*HTTPFetcher)(nil)
