package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/logger"
)

func TestMulti(t *testing.T) {
	var mu sync.Mutex
	var got []string
	record := func(name string) Observer {
		return ObserverFunc(func(_ context.Context, e Event) {
			mu.Lock()
			got = append(got, name+":"+string(e.Type))
			mu.Unlock()
		})
	}

	obs := Multi(record("a"), nil, record("b"))
	obs.OnEvent(context.Background(), Event{Type: EventExchangeCompleted})

	if len(got) != 2 || got[0] != "a:exchange.completed" || got[1] != "b:exchange.completed" {
		t.Errorf("unexpected fan-out %v", got)
	}
	Noop{}.OnEvent(context.Background(), Event{})
}

func TestLevel(t *testing.T) {
	tests := []struct {
		level Level
		name  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
	}
	for _, tt := range tests {
		if tt.level.String() != tt.name {
			t.Errorf("Level(%d).String() = %s, want %s", tt.level, tt.level.String(), tt.name)
		}
		if tt.level.ZerologLevel().String() != tt.name {
			t.Errorf("Level(%d).ZerologLevel() = %s, want %s", tt.level, tt.level.ZerologLevel(), tt.name)
		}
	}
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWriter(&buf, &logger.Config{Level: "debug", Format: "json"}, "test")
	obs := NewLogObserver(l)

	obs.OnEvent(context.Background(), Event{Type: EventExchangeAdmitted, Level: LevelDebug, RouteID: "r"})
	if buf.Len() != 0 {
		t.Fatalf("debug events must be dropped by default, got %s", buf.String())
	}

	obs.OnEvent(context.Background(), Event{
		Type:       EventExchangeFailed,
		Level:      LevelError,
		RouteID:    "hello-world",
		ExchangeID: "ex-1",
		Stage:      "fetch",
		Err:        apperrors.FetchFailed("http://x", 500, nil),
		Data:       map[string]any{"attempt": 1},
	})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	checks := map[string]any{
		"message":              "exchange.failed",
		"level":                "error",
		logger.FieldRouteID:    "hello-world",
		logger.FieldExchangeID: "ex-1",
		logger.FieldStage:      "fetch",
		logger.FieldErrorCode:  "FETCH_FAILED",
		logger.FieldComponent:  "craft",
		"attempt":              float64(1),
	}
	for k, want := range checks {
		if entry[k] != want {
			t.Errorf("%s = %v, want %v", k, entry[k], want)
		}
	}

	buf.Reset()
	obs.WithMinLevel(LevelDebug).OnEvent(context.Background(), Event{Type: EventExchangeAdmitted, Level: LevelDebug})
	if !strings.Contains(buf.String(), "exchange.admitted") {
		t.Errorf("expected debug event with lowered threshold, got %s", buf.String())
	}
}

func TestTracer_Spans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tr := NewTracer(tp)
	ctx, root := tr.StartExchange(context.Background(), "hello-world", "ex-1")
	_, stage := tr.StartStage(ctx, "hello-world", "fetch", "enrich")
	End(stage, errors.New("boom"), "FETCH_FAILED")
	End(root, nil, "")

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	st, ex := spans[0], spans[1]
	if st.Name() != "craft.stage.enrich" || ex.Name() != SpanExchange {
		t.Errorf("unexpected span names %s, %s", st.Name(), ex.Name())
	}
	if st.Parent().SpanID() != ex.SpanContext().SpanID() {
		t.Error("stage span must be a child of the exchange span")
	}
	if st.Status().Code != codes.Error || len(st.Events()) == 0 {
		t.Errorf("expected error status and recorded error, got %+v", st.Status())
	}
	if !hasAttr(st.Attributes(), AttrErrorCode, "FETCH_FAILED") || !hasAttr(st.Attributes(), AttrStage, "fetch") {
		t.Errorf("missing stage attributes %v", st.Attributes())
	}
	if !hasAttr(ex.Attributes(), AttrExchangeID, "ex-1") {
		t.Errorf("missing exchange id %v", ex.Attributes())
	}
}

func TestTracer_NilUsesGlobal(t *testing.T) {
	var tr *Tracer
	_, span := tr.StartExchange(context.Background(), "r", "e")
	End(span, nil, "")
}

func hasAttr(attrs []attribute.KeyValue, key, want string) bool {
	for _, kv := range attrs {
		if string(kv.Key) == key && kv.Value.AsString() == want {
			return true
		}
	}
	return false
}

func TestNewMetrics_Noop(t *testing.T) {
	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	m.ExchangeAdmitted(ctx, "r")
	m.StageFinished(ctx, "r", "fetch", "enrich", "ok", time.Millisecond)
	m.ExchangeFinished(ctx, "r", OutcomeCompleted, time.Millisecond)
	m.RecordError(ctx, "r", "STAGE_FAILED")

	var nilMetrics *Metrics
	nilMetrics.ExchangeAdmitted(ctx, "r")
	nilMetrics.ExchangeFinished(ctx, "r", OutcomeFailed, 0)
}

func TestMetrics_Collect(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		m.ExchangeAdmitted(ctx, "hello-world")
	}
	m.ExchangeFinished(ctx, "hello-world", OutcomeCompleted, 10*time.Millisecond)
	m.ExchangeFinished(ctx, "hello-world", OutcomeFailed, 10*time.Millisecond)
	m.RecordError(ctx, "hello-world", "FETCH_FAILED")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatal(err)
	}
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if data, ok := md.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[md.Name] += dp.Value
				}
			}
		}
	}
	if sums["craft.exchange.in_flight"] != 1 {
		t.Errorf("expected 1 in flight, got %d", sums["craft.exchange.in_flight"])
	}
	if sums["craft.exchange.total"] != 2 {
		t.Errorf("expected 2 finished, got %d", sums["craft.exchange.total"])
	}
	if sums["craft.error.total"] != 1 {
		t.Errorf("expected 1 error, got %d", sums["craft.error.total"])
	}
}

func TestNewMetrics_Errors(t *testing.T) {
	if _, err := NewMetrics(failingMeter{Meter: noop.NewMeterProvider().Meter("test")}); err == nil ||
		!strings.Contains(err.Error(), MetricExchanges) || !strings.Contains(err.Error(), MetricErrors) {
		t.Errorf("expected both counter errors reported, got %v", err)
	}
}

// failingMeter fails every counter.
type failingMeter struct {
	metric.Meter
}

func (failingMeter) Int64Counter(string, ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return nil, errors.New("unsupported")
}

func TestConfig(t *testing.T) {
	cfg := Config{Tracing: TracerConfig{Endpoint: "collector:4318"}}
	cfg.ApplyDefaults("craft", "0.1.0", "staging")

	if cfg.ServiceName != "craft" || cfg.ServiceVersion != "0.1.0" || cfg.Environment != "staging" {
		t.Errorf("unexpected resource %+v", cfg.Resource)
	}
	if cfg.Tracing.Endpoint != "collector:4318" || cfg.Tracing.SampleRate != 1 {
		t.Errorf("unexpected tracing config %+v", cfg.Tracing)
	}
	if cfg.Metrics.Interval != DefaultExportInterval || cfg.Metrics.Endpoint != DefaultEndpoint {
		t.Errorf("unexpected metrics config %+v", cfg.Metrics)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	cfg.Tracing.Enabled = true
	cfg.Tracing.SampleRate = 2
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "tracing.sample_rate") {
		t.Errorf("expected sample rate error, got %v", err)
	}
}

func TestInitTracerAndMeter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res := Resource{ServiceName: "test", ServiceVersion: "dev", Environment: "development"}
	for _, rate := range []float64{1.0, 0.5, 0} {
		tp, err := InitTracer(ctx, res, TracerConfig{Endpoint: DefaultEndpoint, Insecure: true, SampleRate: rate})
		if err != nil {
			t.Fatalf("InitTracer(rate=%v): %v", rate, err)
		}
		_ = tp.Shutdown(ctx)
	}

	mp, err := InitMeter(ctx, res, MeterConfig{Endpoint: DefaultEndpoint, Insecure: true, Interval: time.Second})
	if err != nil {
		t.Fatalf("InitMeter: %v", err)
	}
	_ = mp.Shutdown(ctx)
}
