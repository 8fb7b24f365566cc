package testutil

import (
	"io"
	"net/http"
	"strings"
	"sync"
)

// RoundTripFunc adapts a function to http.RoundTripper.
type RoundTripFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// JSONResponse builds a response to r with a JSON body.
func JSONResponse(r *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Status:        http.StatusText(status),
		Header:        http.Header{"Content-Type": []string{"application/json"}},
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       r,
	}
}

// RecordingTransport passes requests to Next and remembers their URLs.
type RecordingTransport struct {
	Next http.RoundTripper

	mu   sync.Mutex
	urls []string
}

// RoundTrip implements http.RoundTripper.
func (t *RecordingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	t.mu.Lock()
	t.urls = append(t.urls, r.URL.String())
	t.mu.Unlock()
	next := t.Next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(r)
}

// URLs returns the requested URLs in order.
func (t *RecordingTransport) URLs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.urls))
	copy(out, t.urls)
	return out
}

// Count returns the number of requests seen.
func (t *RecordingTransport) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.urls)
}
