package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kbukum/routekit/exchange"
	"github.com/kbukum/routekit/logger"
)

func capture(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	return m
}

func TestLog(t *testing.T) {
	tests := []struct {
		name string
		body any
		want any
	}{
		{"string", "Hello, Leanne Graham!", "Hello, Leanne Graham!"},
		{"struct", struct {
			Name string `json:"name"`
		}{"Ervin"}, map[string]any{"name": "Ervin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := logger.NewWriter(&buf, &logger.Config{Level: "debug", Format: "json"}, "test")
			ex := exchange.New(tt.body).WithHeader(exchange.HeaderRouteID, "hello-world")

			if err := Log(l).Send(context.Background(), ex); err != nil {
				t.Fatal(err)
			}
			entry := capture(t, &buf)
			if entry[logger.FieldRouteID] != "hello-world" || entry[logger.FieldExchangeID] != ex.ID() {
				t.Errorf("missing ids in %v", entry)
			}
			gotBody, _ := json.Marshal(entry[logger.FieldBody])
			wantBody, _ := json.Marshal(tt.want)
			if string(gotBody) != string(wantBody) {
				t.Errorf("body = %s, want %s", gotBody, wantBody)
			}
			if entry["message"] != "exchange received" || entry["level"] != "info" {
				t.Errorf("unexpected message/level in %v", entry)
			}
		})
	}
}

func TestLog_Options(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWriter(&buf, &logger.Config{Level: "debug", Format: "json"}, "test")
	s := Log(l, WithMessage("greeting"), WithLevel(zerolog.WarnLevel), WithHeaders())

	if err := s.Send(context.Background(), exchange.New("hi").WithHeader("k", "v")); err != nil {
		t.Fatal(err)
	}
	entry := capture(t, &buf)
	if entry["message"] != "greeting" || entry["level"] != "warn" {
		t.Errorf("options not applied: %v", entry)
	}
	if !strings.Contains(buf.String(), `"k":"v"`) {
		t.Errorf("expected headers in %s", buf.String())
	}
}

func TestNoop(t *testing.T) {
	if err := Noop().Send(context.Background(), exchange.New(1)); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestFunc(t *testing.T) {
	var got []string
	s := Func(func(_ context.Context, body string) error {
		if body == "bad" {
			return errors.New("rejected")
		}
		got = append(got, body)
		return nil
	})
	ctx := context.Background()

	if err := s.Send(ctx, exchange.New("a")); err != nil {
		t.Fatal(err)
	}
	if err := s.Send(ctx, exchange.New("bad")); err == nil {
		t.Error("expected fn error")
	}
	if err := s.Send(ctx, exchange.New(42)); err == nil {
		t.Error("expected type mismatch error")
	}
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("expected [a], got %v", got)
	}
}
