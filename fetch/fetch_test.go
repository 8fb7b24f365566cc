package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/exchange"
	"github.com/kbukum/routekit/httpclient"
	"github.com/kbukum/routekit/route"
	"github.com/kbukum/routekit/source"
)

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func usersServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		switch r.URL.Path {
		case "/users/1":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(user{ID: 1, Name: "Leanne Graham"})
		case "/echo":
			data, _ := io.ReadAll(r.Body)
			_, _ = fmt.Fprintf(w, "%s %s %s", r.Method, r.Header.Get("X-Trace"), data)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAdapter_Process(t *testing.T) {
	var hits int32
	srv := usersServer(t, &hits)

	a := New(Descriptor{URLFunc: URLOf(func(id int) string {
		return fmt.Sprintf("%s/users/%d", srv.URL, id)
	})})
	in := exchange.New(1)

	out, err := a.Process(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, ok := out.Body().(Result)
	if !ok {
		t.Fatalf("expected Result body, got %T", out.Body())
	}
	if res.Status != http.StatusOK || !strings.Contains(res.Body, "Leanne Graham") {
		t.Errorf("unexpected result %+v", res)
	}
	if res.URL != srv.URL+"/users/1" || res.Headers["Content-Type"] != "application/json" {
		t.Errorf("unexpected url/headers %s %v", res.URL, res.Headers)
	}
	if out.ID() != in.ID() {
		t.Error("fetch must keep the exchange id")
	}
	if out.HeaderString(exchange.HeaderFetchURL) != res.URL {
		t.Errorf("expected fetch url header, got %q", out.HeaderString(exchange.HeaderFetchURL))
	}
	if status, _ := out.Header(exchange.HeaderFetchStatus); status != http.StatusOK {
		t.Errorf("expected fetch status header 200, got %v", status)
	}
	if hits != 1 {
		t.Errorf("expected exactly one request, got %d", hits)
	}
}

func TestAdapter_MethodHeadersBody(t *testing.T) {
	var hits int32
	srv := usersServer(t, &hits)

	a := New(Descriptor{
		Method:   "post",
		URL:      srv.URL + "/echo",
		Headers:  map[string]string{"X-Trace": "abc"},
		BodyFunc: func(ex *exchange.Exchange) any { return ex.Body().(string) },
	})
	out, err := a.Process(context.Background(), exchange.New("payload"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := out.Body().(Result).Body; got != "POST abc payload" {
		t.Errorf("unexpected echo %q", got)
	}
}

func TestAdapter_Failures(t *testing.T) {
	var hits int32
	srv := usersServer(t, &hits)

	tests := []struct {
		name       string
		opts       []Option
		url        string
		wantStatus int
		wantKind   string
	}{
		{"non-2xx", nil, srv.URL + "/users/999", http.StatusNotFound, "not_found"},
		{"network", []Option{WithConfig(httpclient.Config{Transport: roundTrip(func(*http.Request) (*http.Response, error) {
			return nil, fmt.Errorf("connection refused")
		})})}, "http://users.invalid/1", 0, "connection"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Descriptor{URL: tt.url}, tt.opts...).Process(context.Background(), exchange.New(nil))
			if !errors.IsFetch(err) {
				t.Fatalf("expected fetch error, got %v", err)
			}
			appErr, _ := errors.AsAppError(err)
			if status, _ := appErr.Detail("status"); status != tt.wantStatus {
				t.Errorf("expected status %d, got %v", tt.wantStatus, status)
			}
			if kind, _ := appErr.Detail("kind"); kind != tt.wantKind {
				t.Errorf("expected kind %s, got %v", tt.wantKind, kind)
			}
			if u, _ := appErr.Detail("url"); u != tt.url {
				t.Errorf("expected url detail %s, got %v", tt.url, u)
			}
		})
	}
}

func TestAdapter_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	_, err := New(Descriptor{URL: srv.URL, Timeout: 20 * time.Millisecond}).Process(context.Background(), exchange.New(nil))
	if !errors.IsFetch(err) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if !httpclient.IsTimeout(err) {
		t.Errorf("expected timeout cause, got %v", err)
	}
}

func TestAdapter_URLOfWrongBody(t *testing.T) {
	var hits int32
	srv := usersServer(t, &hits)

	a := New(Descriptor{URLFunc: URLOf(func(id int) string {
		return fmt.Sprintf("%s/users/%d", srv.URL, id)
	})})
	_, err := a.Process(context.Background(), exchange.New("one"))
	if !errors.IsStage(err) {
		t.Fatalf("expected stage error, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Errorf("expected no request, got %d", hits)
	}
}

func TestAdapter_LongerTimeoutThanClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := New(Descriptor{URL: srv.URL, Timeout: 2 * time.Second},
		WithConfig(httpclient.Config{Timeout: 20 * time.Millisecond}))
	out, err := a.Process(context.Background(), exchange.New(nil))
	if err != nil {
		t.Fatalf("expected the descriptor timeout to win, got %v", err)
	}
	if res := out.Body().(Result); res.Status != http.StatusOK {
		t.Errorf("unexpected status %d", res.Status)
	}
}

func TestAdapter_Validate(t *testing.T) {
	if err := New(Descriptor{}).Validate(); err == nil {
		t.Error("expected error without URL")
	}
	if err := New(Descriptor{URL: "http://x"}, WithConfig(httpclient.Config{Timeout: -1})).Validate(); err == nil {
		t.Error("expected client config error")
	}

	_, err := route.New().ID("r").From(source.Simple(1)).Enrich(New(Descriptor{})).Build()
	if !errors.IsConfiguration(err) {
		t.Errorf("expected Build to reject the adapter, got %v", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	dec := DecodeJSON[user]()
	tests := []struct {
		name    string
		body    any
		want    user
		wantErr bool
	}{
		{"result", Result{Body: `{"id":1,"name":"Leanne Graham"}`}, user{1, "Leanne Graham"}, false},
		{"string", `{"id":2,"name":"Ervin"}`, user{2, "Ervin"}, false},
		{"bytes", []byte(`{"id":3}`), user{ID: 3}, false},
		{"malformed", Result{Body: `{not json`}, user{}, true},
		{"unsupported", 42, user{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := dec.Process(context.Background(), exchange.New(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
			if err == nil && out.Body() != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, out.Body())
			}
		})
	}
}

func TestRouteTypeChain(t *testing.T) {
	greet := route.Transform(func(_ context.Context, u user) (string, error) { return "Hello, " + u.Name + "!", nil })

	_, err := route.New().ID("ok").
		From(source.Simple(1)).
		Enrich(New(Descriptor{URL: "http://x"})).
		Transform(DecodeJSON[user]()).
		Transform(greet).
		Build()
	if err != nil {
		t.Fatalf("expected valid chain, got %v", err)
	}

	_, err = route.New().ID("bad").
		From(source.Simple(1)).
		Enrich(New(Descriptor{URL: "http://x"})).
		Transform(greet).
		Build()
	if !errors.IsConfiguration(err) {
		t.Errorf("expected Result -> user mismatch to be rejected, got %v", err)
	}
}

type roundTrip func(*http.Request) (*http.Response, error)

func (f roundTrip) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
