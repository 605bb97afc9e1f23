// ABOUTME: HTTP client for feed, page and forum fetches with retries and per-host rate limiting
// ABOUTME: Sends a fixed user agent and backs off exponentially on 5xx responses

package standard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"daily-feed/core/interfaces"

	"golang.org/x/time/rate"
)

const (
	// DefaultUserAgent identifies the digest builder to remote servers
	DefaultUserAgent = "daily-feed/0.1.0"

	// DefaultTimeout bounds a single request
	DefaultTimeout = 30 * time.Second

	defaultMaxRetries = 3
	defaultBurst      = 3
	initialBackoff    = 100 * time.Millisecond
)

// Options configures the client. Zero values use the defaults; a zero
// RequestsPerSecond disables rate limiting.
type Options struct {
	Timeout           time.Duration
	UserAgent         string
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
}

// StandardHTTPClient implements the HTTPClient interface
type StandardHTTPClient struct {
	client    *http.Client
	userAgent string
	retries   int
	limit     rate.Limit
	burst     int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewStandardHTTPClient creates a new HTTP client with the specified timeout
func NewStandardHTTPClient(timeout time.Duration) *StandardHTTPClient {
	return NewClient(Options{Timeout: timeout})
}

// NewClient creates a client from options
func NewClient(opts Options) *StandardHTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &StandardHTTPClient{
		client:    &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		retries:   opts.MaxRetries,
		limit:     limit,
		burst:     opts.Burst,
		limiters:  make(map[string]*rate.Limiter),
	}
}

// Get performs an HTTP GET request, retrying transport errors and 5xx responses.
// The last 5xx response is returned when retries run out.
func (c *StandardHTTPClient) Get(ctx context.Context, rawURL string) (interfaces.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			// 100ms, 200ms, 400ms, ...
			backoff := initialBackoff << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.wait(ctx, req.URL); err != nil {
			return nil, err
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, err
			}
			continue
		}

		// Don't retry on success or 4xx errors
		if resp.StatusCode < 500 || attempt == c.retries-1 {
			return wrap(resp), nil
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("server returned %d", resp.StatusCode)
	}

	return nil, lastErr
}

// Post performs an HTTP POST request with a JSON content type. Posts are not retried.
func (c *StandardHTTPClient) Post(ctx context.Context, rawURL string, body io.Reader) (interfaces.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")

	if err := c.wait(ctx, req.URL); err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	return wrap(resp), nil
}

// wait blocks until the limiter for the request's host admits another request
func (c *StandardHTTPClient) wait(ctx context.Context, u *url.URL) error {
	if c.limit == rate.Inf {
		return nil
	}
	return c.limiter(u.Host).Wait(ctx)
}

func (c *StandardHTTPClient) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(c.limit, c.burst)
		c.limiters[host] = l
	}
	return l
}

func wrap(resp *http.Response) *httpResponse {
	return &httpResponse{
		statusCode: resp.StatusCode,
		body:       resp.Body,
		headers:    resp.Header,
	}
}

// httpResponse implements the Response interface
type httpResponse struct {
	statusCode int
	body       io.ReadCloser
	headers    http.Header
}

// StatusCode returns the HTTP status code
func (r *httpResponse) StatusCode() int {
	return r.statusCode
}

// Body returns the response body
func (r *httpResponse) Body() io.ReadCloser {
	return r.body
}

// Header returns the value of the specified header
func (r *httpResponse) Header(key string) string {
	return r.headers.Get(key)
}
