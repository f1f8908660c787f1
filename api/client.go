package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pithecene-io/toggl-fetch/iox"
	"github.com/pithecene-io/toggl-fetch/metrics"
)

// DefaultMaxAttempts is the total number of tries per request, the first
// attempt included.
const DefaultMaxAttempts = 3

// DefaultRetryDelay is the fixed pause between tries. Deliberately simple:
// it rides out short rate-limit windows and flaky connections without
// backoff bookkeeping.
const DefaultRetryDelay = time.Second

// Response is the classifier's view of a completed HTTP exchange.
type Response struct {
	// Status is the HTTP status code.
	Status int
	// Header holds the response headers.
	Header http.Header
	// Body is the fully read response body.
	Body []byte
	// URL is the final URL after redirects.
	URL string
	// RequestURL is the originally requested URL.
	RequestURL string
}

// CheckResponse inspects a response and returns a classified error, or nil
// when the caller may consume the body. One classifier exists per remote
// surface.
type CheckResponse func(*Response) error

// Options tune a surface client. The zero value selects all defaults.
type Options struct {
	// MaxAttempts is the total tries per request (default DefaultMaxAttempts).
	MaxAttempts int
	// RetryDelay is the pause between tries (default DefaultRetryDelay).
	RetryDelay time.Duration
	// Collector receives request metrics. Nil disables collection.
	Collector *metrics.Collector
}

// Client executes GET requests against one remote surface: a fixed base URL,
// a shared session, and a classifier. Transient failures are retried with a
// fixed delay up to the attempt budget; fatal failures return immediately.
type Client struct {
	baseURL     string
	session     *Session
	check       CheckResponse
	maxAttempts int
	retryDelay  time.Duration
	collector   *metrics.Collector
}

func newClient(baseURL string, session *Session, check CheckResponse, opts Options) *Client {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	return &Client{
		baseURL:     baseURL,
		session:     session,
		check:       check,
		maxAttempts: opts.MaxAttempts,
		retryDelay:  opts.RetryDelay,
		collector:   opts.Collector,
	}
}

// get performs a GET against baseURL+path and returns the raw body.
// Query parameters merge the session defaults with params; params win on
// conflict. Retries transient failures only.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	var lastErr error

	for attempt := range c.maxAttempts {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("request canceled: %w", err)
		}

		// Fixed delay before retries (not before the first attempt).
		if attempt > 0 {
			c.collector.IncRetry()
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("request canceled during retry delay: %w", ctx.Err())
			case <-time.After(c.retryDelay):
			}
		}

		body, err := c.doGet(ctx, path, params)
		if err == nil {
			c.collector.AddBytesFetched(int64(len(body)))
			return body, nil
		}
		lastErr = err

		if errors.Is(err, ErrRateLimited) {
			c.collector.IncRateLimitHit()
		}
		if !IsTransient(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxAttempts, lastErr)
}

// getJSON performs a GET and decodes the body into v.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// doGet performs a single request and applies the classifier.
func (c *Client) doGet(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}

	query := c.session.defaultParams()
	for k, v := range params {
		query[k] = v
	}
	u.RawQuery = query.Encode()
	requested := u.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requested, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.session.apply(req)

	c.collector.IncRequest()
	resp, err := c.session.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	r := &Response{
		Status:     resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		URL:        resp.Request.URL.String(),
		RequestURL: requested,
	}
	if c.check != nil {
		if err := c.check(r); err != nil {
			return nil, err
		}
	}

	return body, nil
}
