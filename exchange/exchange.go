package exchange

import (
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
)

// Well-known header keys stamped by the engine and the built-in adapters.
const (
	HeaderRouteID     = "craft.route.id"
	HeaderCreatedAt   = "craft.exchange.created_at"
	HeaderFetchURL    = "craft.fetch.url"
	HeaderFetchStatus = "craft.fetch.status"
	HeaderTimerTick   = "craft.timer.tick"
)

// Exchange is the unit of data flowing through a route.
type Exchange struct {
	id      string
	body    any
	headers map[string]any
}

// New creates an exchange with a fresh id and the given body.
func New(body any) *Exchange {
	return &Exchange{
		id:      uuid.NewString(),
		body:    body,
		headers: map[string]any{HeaderCreatedAt: time.Now().UTC()},
	}
}

// NewWithHeaders creates an exchange with a fresh id, body and initial headers.
func NewWithHeaders(body any, headers map[string]any) *Exchange {
	ex := New(body)
	maps.Copy(ex.headers, headers)
	return ex
}

// ID returns the exchange id shared by every exchange derived from the same origin.
func (e *Exchange) ID() string { return e.id }

// Body returns the payload.
func (e *Exchange) Body() any { return e.body }

// Header returns a header value.
func (e *Exchange) Header(key string) (any, bool) {
	v, ok := e.headers[key]
	return v, ok
}

// HeaderString returns a header value formatted as a string, or "" when absent.
func (e *Exchange) HeaderString(key string) string {
	v, ok := e.headers[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Headers returns a copy of all headers.
func (e *Exchange) Headers() map[string]any {
	return maps.Clone(e.headers)
}

// WithBody returns a new exchange with body replaced.
func (e *Exchange) WithBody(body any) *Exchange {
	return &Exchange{id: e.id, body: body, headers: maps.Clone(e.headers)}
}

// WithHeader returns a new exchange with one header set.
func (e *Exchange) WithHeader(key string, value any) *Exchange {
	next := e.WithBody(e.body)
	next.headers[key] = value
	return next
}

// WithHeaders returns a new exchange with headers merged over the existing ones.
func (e *Exchange) WithHeaders(headers map[string]any) *Exchange {
	next := e.WithBody(e.body)
	maps.Copy(next.headers, headers)
	return next
}

// String implements fmt.Stringer for log output.
func (e *Exchange) String() string {
	return fmt.Sprintf("exchange(%s)", e.id)
}

// BodyAs returns the body asserted to T.
func BodyAs[T any](e *Exchange) (T, error) {
	v, ok := e.body.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("exchange %s: expected body of type %T, got %T", e.id, zero, e.body)
	}
	return v, nil
}
