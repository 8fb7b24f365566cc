package httpclient

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// Request is one outbound call. Method defaults to GET. Path is resolved
// against the client's BaseURL unless it is absolute.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Query   map[string]string
	// Body is sent raw for io.Reader and []byte, as text/plain for string
	// and JSON-encoded otherwise.
	Body any
	// Timeout, when positive, bounds this request instead of the client
	// timeout.
	Timeout time.Duration
}

// Response is a fully read response. URL is the final URL after redirects
// and Headers keep the first value of each header.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	URL        string
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// IsError reports a 4xx or 5xx status.
func (r *Response) IsError() bool { return r.StatusCode >= http.StatusBadRequest }

func encodeBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}

func firstValues(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}
