package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed request.
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindCanceled    Kind = "canceled"
	KindConnection  Kind = "connection"
	KindCircuitOpen Kind = "circuit_open"
	KindAuth        Kind = "auth"
	KindNotFound    Kind = "not_found"
	KindRateLimit   Kind = "rate_limit"
	KindInvalid     Kind = "validation"
	KindServer      Kind = "server"
)

// Error is a request failure. StatusCode and Body are set only when a
// response arrived.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Retryable  bool
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("httpclient: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// transportError wraps a failure that produced no response. Only caller
// cancellation is final; the other kinds may succeed on a later attempt.
func transportError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Message: err.Error(), Retryable: kind != KindCanceled, Err: err}
}

func circuitOpenError(name string, err error) *Error {
	return &Error{Kind: KindCircuitOpen, Message: fmt.Sprintf("circuit %q is open", name), Retryable: true, Err: err}
}

func invalidRequest(format string, args ...any) *Error {
	return &Error{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

// ClassifyStatus returns nil for 2xx and a classified *Error for anything
// else. 429 and 5xx are retryable. Unfollowed 1xx and 3xx are reported as
// non-retryable server errors.
func ClassifyStatus(status int, body []byte) *Error {
	if status >= 200 && status < 300 {
		return nil
	}
	kind, retryable := KindServer, false
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		kind = KindAuth
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status == http.StatusTooManyRequests:
		kind, retryable = KindRateLimit, true
	case status >= 400 && status < 500:
		kind = KindInvalid
	case status >= 500:
		retryable = true
	}
	return &Error{Kind: kind, StatusCode: status, Message: http.StatusText(status), Retryable: retryable, Body: body}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// HasKind reports whether err is an *Error of the given kind.
func HasKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsTimeout reports a request that ran out of time.
func IsTimeout(err error) bool { return HasKind(err, KindTimeout) }

// IsRetryable reports whether a later attempt may succeed. It is the
// default failure predicate of the client's circuit breaker.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}
