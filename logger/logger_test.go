package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
)

func capture(level string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWriter(&buf, &Config{Level: level, Format: FormatJSON}, "craft"), &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLevels(t *testing.T) {
	tests := []struct {
		level string
		want  int
	}{
		{"debug", 4},
		{"info", 3},
		{"WARN", 2},
		{"error", 1},
		{"", 3},
		{"loud", 3},
	}
	for _, tc := range tests {
		t.Run("level="+tc.level, func(t *testing.T) {
			l, buf := capture(tc.level)
			l.Debug("d")
			l.Info("i")
			l.Warn("w")
			l.Error("e")
			if got := len(lines(t, buf)); got != tc.want {
				t.Errorf("expected %d lines, got %d", tc.want, got)
			}
		})
	}
}

func TestScopedLogger(t *testing.T) {
	l, buf := capture("info")
	l.WithComponent("craft").
		WithRoute("hello-world").
		WithExchange("ex-1").
		Info("exchange completed", Fields(FieldStage, "greet"))

	got := lines(t, buf)
	if len(got) != 1 {
		t.Fatalf("expected 1 line, got %d", len(got))
	}
	want := map[string]string{
		"service":       "craft",
		FieldComponent:  "craft",
		FieldRouteID:    "hello-world",
		FieldExchangeID: "ex-1",
		FieldStage:      "greet",
		"message":       "exchange completed",
		"level":         "info",
	}
	for k, v := range want {
		if got[0][k] != v {
			t.Errorf("field %s: expected %q, got %v", k, v, got[0][k])
		}
	}
}

func TestWithErrorAndFields(t *testing.T) {
	l, buf := capture("info")
	l.WithError(fmt.Errorf("boom")).Error("fetch failed")
	l.WithFields(map[string]any{"inflight": 2}).Warn("draining", Fields(FieldRouteID, "r"))

	got := lines(t, buf)
	if got[0]["error"] != "boom" {
		t.Errorf("expected error=boom, got %v", got[0]["error"])
	}
	if got[1]["inflight"] != float64(2) || got[1][FieldRouteID] != "r" {
		t.Errorf("unexpected fields %v", got[1])
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info("discarded")
	l.WithRoute("r").Error("discarded")
}

func TestGlobalLogger(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	cfg := &Config{ServiceName: "init-svc", Format: FormatJSON}
	Init(cfg)
	if cfg.Level != "info" {
		t.Errorf("expected defaults applied, got level %q", cfg.Level)
	}
	if GetGlobalLogger().service != "init-svc" {
		t.Errorf("expected global service init-svc, got %q", GetGlobalLogger().service)
	}

	l, buf := capture("debug")
	SetGlobalLogger(l)
	GetGlobalLogger().WithComponent("registry").Debug("scoped")
	if got := lines(t, buf); len(got) != 1 || got[0][FieldComponent] != "registry" {
		t.Errorf("unexpected global output %v", got)
	}
}

func TestConfig(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != FormatConsole || cfg.Output != "stdout" || !cfg.Timestamp {
		t.Errorf("unexpected defaults %+v", cfg)
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"json", Config{Level: "info", Format: "json"}, false},
		{"pretty", Config{Level: "debug", Format: "pretty"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf, &Config{Level: "info", Format: FormatConsole, NoColor: true}, "craft").Warn("slow sink")
	out := buf.String()
	if !strings.Contains(out, "[WRN]") || !strings.Contains(out, "slow sink") {
		t.Errorf("unexpected console output %q", out)
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "skipped", "dangling")
	if len(m) != 2 || m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected fields %v", m)
	}
	d := DurationFields("craft", 1500*time.Millisecond)
	if d[FieldDuration] != int64(1500) || d[FieldComponent] != "craft" {
		t.Errorf("unexpected duration fields %v", d)
	}
}
