package fetch

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/exchange"
	"github.com/kbukum/routekit/httpclient"
	"github.com/kbukum/routekit/route"
	"github.com/kbukum/routekit/validation"
)

var (
	_ route.Processor = (*Adapter)(nil)
	_ route.Validator = (*Adapter)(nil)
	_ route.OutTyped  = (*Adapter)(nil)
)

// Descriptor describes the request issued for each exchange. URLFunc and
// BodyFunc, when set, are evaluated against the current exchange and win
// over URL and Body.
type Descriptor struct {
	Method   string
	URL      string
	URLFunc  func(ex *exchange.Exchange) (string, error)
	Headers  map[string]string
	Body     any
	BodyFunc func(ex *exchange.Exchange) any
	// Timeout replaces the client timeout when positive, whether shorter
	// or longer.
	Timeout time.Duration
}

// Result is the body produced by a successful fetch.
type Result struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	// URL is the final URL after redirects.
	URL  string `json:"url"`
	Body string `json:"body"`
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithClient sets the HTTP client. Clients are safe to share across routes.
func WithClient(c *httpclient.Client) Option {
	return func(a *Adapter) { a.client = c }
}

// WithConfig builds a dedicated client from cfg.
func WithConfig(cfg httpclient.Config) Option {
	return func(a *Adapter) {
		a.client, a.err = httpclient.New(cfg)
	}
}

// WithName sets the stage name. Defaults to "fetch".
func WithName(name string) Option {
	return func(a *Adapter) { a.name = name }
}

var (
	defaultOnce   sync.Once
	defaultClient *httpclient.Client
)

func sharedClient() *httpclient.Client {
	defaultOnce.Do(func() {
		// Zero config with defaults applied always validates.
		defaultClient, _ = httpclient.New(httpclient.Config{Name: "fetch"})
	})
	return defaultClient
}

// Adapter is the fetch enrich processor.
type Adapter struct {
	desc   Descriptor
	client *httpclient.Client
	name   string
	err    error
}

// New creates a fetch processor for desc.
func New(desc Descriptor, opts ...Option) *Adapter {
	a := &Adapter{desc: desc, name: "fetch"}
	for _, opt := range opts {
		opt(a)
	}
	if a.client == nil && a.err == nil {
		a.client = sharedClient()
	}
	return a
}

// StageName implements route.Namer.
func (a *Adapter) StageName() string { return a.name }

// OutType implements route.OutTyped.
func (a *Adapter) OutType() reflect.Type { return reflect.TypeFor[Result]() }

// Validate implements route.Validator.
func (a *Adapter) Validate() error {
	if a.err != nil {
		return a.err
	}
	return validation.New().
		Custom(a.desc.URL != "" || a.desc.URLFunc != nil, "url", "URL or URLFunc is required").
		Custom(a.desc.Timeout >= 0, "timeout", "must not be negative").
		Err()
}

// ResolveURL returns the URL the adapter would call for ex.
func (a *Adapter) ResolveURL(ex *exchange.Exchange) (string, error) {
	if a.desc.URLFunc != nil {
		return a.desc.URLFunc(ex)
	}
	return a.desc.URL, nil
}

// URLOf builds a URLFunc from the typed exchange body. A body of another
// type fails the exchange instead of producing a URL.
func URLOf[T any](fn func(body T) string) func(ex *exchange.Exchange) (string, error) {
	return func(ex *exchange.Exchange) (string, error) {
		body, err := exchange.BodyAs[T](ex)
		if err != nil {
			return "", err
		}
		return fn(body), nil
	}
}

// Process issues the request and replaces the body with a Result.
func (a *Adapter) Process(ctx context.Context, ex *exchange.Exchange) (*exchange.Exchange, error) {
	if a.client == nil {
		return nil, errors.StageFailed(a.name, a.err)
	}
	url, err := a.ResolveURL(ex)
	if err != nil {
		return nil, errors.StageFailed(a.name, err)
	}
	method := strings.ToUpper(a.desc.Method)
	if method == "" {
		method = http.MethodGet
	}
	body := a.desc.Body
	if a.desc.BodyFunc != nil {
		body = a.desc.BodyFunc(ex)
	}

	resp, err := a.client.Do(ctx, httpclient.Request{
		Method:  method,
		Path:    url,
		Headers: a.desc.Headers,
		Body:    body,
		Timeout: a.desc.Timeout,
	})
	if err != nil {
		return nil, fetchError(url, resp, err)
	}

	result := Result{
		Status:  resp.StatusCode,
		Headers: resp.Headers,
		URL:     resp.URL,
		Body:    string(resp.Body),
	}
	return ex.WithBody(result).WithHeaders(map[string]any{
		exchange.HeaderFetchURL:    result.URL,
		exchange.HeaderFetchStatus: result.Status,
	}), nil
}

func fetchError(url string, resp *httpclient.Response, err error) *errors.AppError {
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	appErr := errors.FetchFailed(url, status, err)
	if kind, ok := httpclient.KindOf(err); ok {
		appErr.WithDetail("kind", string(kind))
		appErr.Retryable = httpclient.IsRetryable(err)
	}
	return appErr
}
