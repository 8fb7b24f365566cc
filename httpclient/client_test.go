package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/routekit/resilience"
	"github.com/kbukum/routekit/security"
	"github.com/kbukum/routekit/testutil"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestClient_Do_GET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/users/1" {
			t.Errorf("expected /users/1, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"name": "Leanne Graham"})
	}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL})
	resp, err := c.Do(context.Background(), Request{Path: "/users/1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsSuccess() || resp.IsError() {
		t.Errorf("expected success, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(resp.Body), "Leanne Graham") {
		t.Errorf("unexpected body %s", resp.Body)
	}
	if resp.Headers["Content-Type"] != "application/json" {
		t.Errorf("expected flattened content type, got %v", resp.Headers)
	}
	if resp.URL != srv.URL+"/users/1" {
		t.Errorf("expected final URL %s/users/1, got %s", srv.URL, resp.URL)
	}
}

func TestClient_Do_Bodies(t *testing.T) {
	tests := []struct {
		name        string
		body        any
		contentType string
		want        string
	}{
		{"json", map[string]string{"name": "Bob"}, "application/json", `{"name":"Bob"}`},
		{"string", "hello", "text/plain", "hello"},
		{"bytes", []byte("raw"), "", "raw"},
		{"reader", strings.NewReader("stream"), "", "stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ct := r.Header.Get("Content-Type"); ct != tt.contentType {
					t.Errorf("expected content type %q, got %q", tt.contentType, ct)
				}
				data, _ := io.ReadAll(r.Body)
				if strings.TrimSpace(string(data)) != tt.want {
					t.Errorf("expected body %q, got %q", tt.want, data)
				}
				w.WriteHeader(http.StatusCreated)
			}))
			defer srv.Close()

			c := newTestClient(t, Config{BaseURL: srv.URL})
			resp, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/", Body: tt.body})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != http.StatusCreated {
				t.Errorf("expected 201, got %d", resp.StatusCode)
			}
		})
	}
}

func TestClient_Do_HeadersAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Default"); got != "d" {
			t.Errorf("expected default header, got %q", got)
		}
		if got := r.Header.Get("X-Override"); got != "request" {
			t.Errorf("expected request header to win, got %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != defaultUserAgent {
			t.Errorf("expected user agent %q, got %q", defaultUserAgent, got)
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("expected page=2, got %q", got)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, Config{
		BaseURL: srv.URL,
		Headers: map[string]string{"X-Default": "d", "X-Override": "client"},
	})
	_, err := c.Do(context.Background(), Request{
		Path:    "/items",
		Headers: map[string]string{"X-Override": "request"},
		Query:   map[string]string{"page": "2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_ErrorClassification(t *testing.T) {
	tests := []struct {
		status  int
		checker func(error) bool
	}{
		{404, func(err error) bool { return HasKind(err, KindNotFound) }},
		{500, func(err error) bool { return HasKind(err, KindServer) }},
		{503, IsRetryable},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("HTTP_%d", tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"test"}`))
			}))
			defer srv.Close()

			c := newTestClient(t, Config{BaseURL: srv.URL})
			resp, err := c.Do(context.Background(), Request{Path: "/"})
			if err == nil || !tt.checker(err) {
				t.Fatalf("classification failed for HTTP %d: %v", tt.status, err)
			}
			if resp == nil || resp.StatusCode != tt.status {
				t.Fatalf("expected response with status %d, got %+v", tt.status, resp)
			}
		})
	}
}

func TestClient_Do_CancelVersusTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()
	c := newTestClient(t, Config{BaseURL: srv.URL})

	t.Run("timeout", func(t *testing.T) {
		_, err := c.Do(context.Background(), Request{Path: "/", Timeout: 30 * time.Millisecond})
		if !IsTimeout(err) {
			t.Errorf("expected timeout, got %v", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(30*time.Millisecond, cancel)
		_, err := c.Do(ctx, Request{Path: "/"})
		if !HasKind(err, KindCanceled) {
			t.Errorf("expected cancellation, got %v", err)
		}
	})
}

func TestClient_Do_RequestTimeoutReplacesClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(200 * time.Millisecond):
			w.WriteHeader(http.StatusOK)
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	c := newTestClient(t, Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

	if _, err := c.Do(context.Background(), Request{Path: "/"}); !IsTimeout(err) {
		t.Errorf("expected the client timeout to apply, got %v", err)
	}
	resp, err := c.Do(context.Background(), Request{Path: "/", Timeout: 2 * time.Second})
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Errorf("expected a longer request timeout to extend the client's, got %v", err)
	}
}

func TestClient_Do_ConnectionError(t *testing.T) {
	c := newTestClient(t, Config{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, fmt.Errorf("dial tcp: connection refused")
	})})
	_, err := c.Do(context.Background(), Request{Path: "http://users.invalid/1"})
	if !HasKind(err, KindConnection) {
		t.Errorf("expected connection error, got %v", err)
	}
}

func TestClient_Do_FullURLIgnoresBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: "http://should-not-be-used.invalid"})
	resp, err := c.Do(context.Background(), Request{Path: srv.URL + "/direct"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestClient_Do_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("moved"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: srv.URL})
	resp, err := c.Do(context.Background(), Request{Path: "/old"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.URL != srv.URL+"/new" {
		t.Errorf("expected final URL %s/new, got %s", srv.URL, resp.URL)
	}
}

func TestClient_Do_CircuitBreaker(t *testing.T) {
	calls := 0
	c := newTestClient(t, Config{
		CircuitBreaker: &resilience.CircuitBreakerConfig{Name: "users", MaxFailures: 2, OpenTimeout: time.Minute},
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			return &http.Response{
				StatusCode: http.StatusBadGateway,
				Body:       io.NopCloser(strings.NewReader("")),
				Header:     http.Header{},
				Request:    r,
			}, nil
		}),
	})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, _ = c.Do(ctx, Request{Path: "http://users.test/"})
	}
	_, err := c.Do(ctx, Request{Path: "http://users.test/"})
	if !HasKind(err, KindCircuitOpen) {
		t.Fatalf("expected circuit open, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 transport calls, got %d", calls)
	}
	if c.Breaker().State() != resilience.StateOpen {
		t.Errorf("expected open breaker, got %v", c.Breaker().State())
	}
}

func TestClient_ResolveURL(t *testing.T) {
	c := newTestClient(t, Config{BaseURL: "https://api.test/v1/"})
	tests := map[string]string{
		"/users/1":             "https://api.test/v1/users/1",
		"users/1":              "https://api.test/v1/users/1",
		"https://other.test/x": "https://other.test/x",
	}
	for in, want := range tests {
		if got := c.ResolveURL(in); got != want {
			t.Errorf("ResolveURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClient_TLS(t *testing.T) {
	certs := testutil.GenerateCerts(t)
	serverTLS, err := (&security.TLSConfig{CertFile: certs.CertFile, KeyFile: certs.KeyFile}).ServerConfig()
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"name":"Leanne Graham"}`)
	}))
	srv.TLS = serverTLS
	srv.StartTLS()
	defer srv.Close()

	untrusted := newTestClient(t, Config{Timeout: 2 * time.Second})
	if _, err := untrusted.Do(context.Background(), Request{Method: http.MethodGet, Path: srv.URL}); err == nil {
		t.Fatal("expected verification failure without the CA")
	}

	trusted := newTestClient(t, Config{Timeout: 2 * time.Second, TLS: &security.TLSConfig{CAFile: certs.CAFile}})
	resp, err := trusted.Do(context.Background(), Request{Method: http.MethodGet, Path: srv.URL})
	if err != nil {
		t.Fatalf("trusted request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	if _, err := New(Config{TLS: &security.TLSConfig{CAFile: "/nonexistent/ca.pem"}}); err == nil {
		t.Error("expected error for unreadable CA")
	}
}
