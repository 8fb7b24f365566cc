package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/kbukum/routekit/resilience"
)

// Client sends requests over a pooled transport, optionally behind a
// circuit breaker. It is safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *resilience.CircuitBreaker
}

// New validates cfg and builds the client. Without cfg.Transport it clones
// http.DefaultTransport and applies the pool and TLS settings.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rt, err := cfg.transport()
	if err != nil {
		return nil, fmt.Errorf("httpclient: %w", err)
	}

	// The per-request deadline is set in send so Request.Timeout can
	// extend it as well as shorten it.
	c := &Client{cfg: cfg, http: &http.Client{Transport: rt}}
	if cfg.CircuitBreaker != nil {
		bc := *cfg.CircuitBreaker
		if bc.IsFailure == nil {
			bc.IsFailure = IsRetryable
		}
		c.breaker = resilience.NewCircuitBreaker(bc)
	}
	return c, nil
}

func (c Config) transport() (http.RoundTripper, error) {
	if c.Transport != nil {
		return c.Transport, nil
	}
	t := http.DefaultTransport.(*http.Transport).Clone()
	if c.MaxIdleConnsPerHost > 0 {
		t.MaxIdleConnsPerHost = c.MaxIdleConnsPerHost
	}
	tlsCfg, err := c.TLS.ClientConfig()
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		t.TLSClientConfig = tlsCfg
	}
	return t, nil
}

// Name returns the configured client name.
func (c *Client) Name() string { return c.cfg.Name }

// Breaker returns the circuit breaker, or nil when none is configured.
func (c *Client) Breaker() *resilience.CircuitBreaker { return c.breaker }

// Do sends req and reads the whole response. A non-2xx response is
// returned together with its classified *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.breaker == nil {
		return c.send(ctx, req)
	}
	var resp *Response
	err := c.breaker.Execute(func() (err error) {
		resp, err = c.send(ctx, req)
		return err
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return nil, circuitOpenError(c.breaker.Name(), err)
	}
	return resp, err
}

func (c *Client) send(ctx context.Context, req Request) (*Response, error) {
	timeout := c.cfg.Timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(ctx, fmt.Errorf("read response body: %w", err))
	}
	out := &Response{
		StatusCode: resp.StatusCode,
		Headers:    firstValues(resp.Header),
		Body:       body,
		URL:        finalURL(httpReq, resp).String(),
	}
	if statusErr := ClassifyStatus(resp.StatusCode, body); statusErr != nil {
		return out, statusErr
	}
	return out, nil
}

func finalURL(req *http.Request, resp *http.Response) *url.URL {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL
	}
	return req.URL
}

// classify tells caller cancellation apart from timeouts and connection
// failures.
func classify(ctx context.Context, err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return transportError(KindCanceled, err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return transportError(KindTimeout, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return transportError(KindTimeout, err)
	default:
		return transportError(KindConnection, err)
	}
}

// ResolveURL joins path onto the base URL unless path is already absolute.
func (c *Client) ResolveURL(path string) string {
	if c.cfg.BaseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, invalidRequest("encode body: %v", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.ResolveURL(req.Path), body)
	if err != nil {
		return nil, invalidRequest("create request: %v", err)
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	h := httpReq.Header
	h.Set("User-Agent", c.cfg.UserAgent)
	for _, headers := range []map[string]string{c.cfg.Headers, req.Headers} {
		for k, v := range headers {
			h.Set(k, v)
		}
	}
	if body != nil && contentType != "" && h.Get("Content-Type") == "" {
		h.Set("Content-Type", contentType)
	}
	return httpReq, nil
}
