package httputil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kgview/pkg/buildinfo"
	"github.com/matzehuels/kgview/pkg/errors"
	"github.com/matzehuels/kgview/pkg/observability"
)

// DefaultTimeout bounds a single request made through [Client].
const DefaultTimeout = 10 * time.Second

// Client performs JSON requests against the knowledge-base backend.
type Client struct {
	http     *http.Client
	cache    *ResponseCache
	headers  map[string]string
	logger   *log.Logger
	attempts int
	delay    time.Duration
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithCache enables response caching for [Client.Cached].
func WithCache(c *ResponseCache) ClientOption {
	return func(cl *Client) { cl.cache = c }
}

// WithHeader sets a header sent with every request.
func WithHeader(key, value string) ClientOption {
	return func(cl *Client) { cl.headers[key] = value }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(cl *Client) { cl.http = h }
}

// WithTimeout bounds each request to d.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		cl.http = &http.Client{Transport: cl.http.Transport, Timeout: d}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) ClientOption {
	return func(cl *Client) { cl.logger = l }
}

// WithRetry overrides the retry policy.
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(cl *Client) { cl.attempts, cl.delay = attempts, delay }
}

// NewClient creates a client with [DefaultTimeout] and the default retry policy.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:     &http.Client{Timeout: DefaultTimeout},
		headers:  map[string]string{"Accept": "application/json", "User-Agent": buildinfo.UserAgent()},
		logger:   log.Default(),
		attempts: DefaultAttempts,
		delay:    DefaultDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cached returns the cached value for key in v, or runs fetch with retry and
// caches v on success. refresh bypasses the lookup but still stores.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	if c.cache != nil && !refresh {
		if ok, _ := c.cache.Get(key, v); ok {
			observability.Cache().OnCacheHit(ctx, "http")
			return nil
		}
		observability.Cache().OnCacheMiss(ctx, "http")
	}
	if err := Retry(ctx, c.attempts, c.delay, fetch); err != nil {
		return err
	}
	if c.cache != nil {
		if err := c.cache.Set(key, v); err != nil {
			c.logger.Debug("response cache write failed", "key", key, "err", err)
		}
	}
	return nil
}

// GetJSON performs a GET and decodes the JSON body into v. Transient
// failures are returned as [RetryableError]s; the caller decides whether to
// retry (see [Client.Cached]).
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	body, err := c.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeUpstream, err, "decode response from %s", rawURL)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid url %q", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, u.Host, u.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, u.Host, u.Path, err)
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "%s %s", method, u.Path)
		}
		return nil, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, u.Path))
	}
	hooks.OnResponse(ctx, method, u.Host, u.Path, resp.StatusCode, time.Since(start))
	c.logger.Debug("backend response", "method", method, "url", u.Redacted(), "status", resp.StatusCode)

	if err := CheckStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// CheckStatus maps an HTTP status to a coded error. 5xx responses and 429
// are retryable.
func CheckStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "resource not found")
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errors.New(errors.ErrCodeUnauthorized, "status %d", code)
	case code == http.StatusTooManyRequests || code >= 500:
		return Retryable(errors.New(errors.ErrCodeNetwork, "status %d", code))
	default:
		return errors.New(errors.ErrCodeUpstream, "unexpected status %d", code)
	}
}
