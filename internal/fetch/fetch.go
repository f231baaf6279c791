// Package fetch provides the shared HTTP helper used by the catalogue
// client and the sitemap collector.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodyBytes bounds how much of any response we are willing to read.
const maxBodyBytes = 32 << 20

// TransportError wraps a network-level fetch failure, including non-2xx
// status codes.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client is a thin wrapper around http.Client that applies the configured
// user agent and timeout to every request.
type Client struct {
	http      *http.Client
	userAgent string
}

// NewClient builds a Client with connection pooling suited to a polite
// single-site crawl.
func NewClient(userAgent string, timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        64,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
		userAgent: userAgent,
	}
}

// Get retrieves rawURL and returns the body and response headers. Network
// failures and non-2xx statuses surface as *TransportError.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, &TransportError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, &TransportError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // read side already handled

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, &TransportError{URL: rawURL, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &TransportError{
			URL: rawURL,
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	return body, resp.Header, nil
}
