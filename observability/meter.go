package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/routekit/errors"
)

// Instrument names.
const (
	MetricExchanges        = "craft.exchange.total"
	MetricExchangeDuration = "craft.exchange.duration"
	MetricInFlight         = "craft.exchange.in_flight"
	MetricStageDuration    = "craft.stage.duration"
	MetricErrors           = "craft.error.total"
)

// Exchange outcomes, recorded as the "outcome" attribute.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeAbandoned = "abandoned"
)

// Metrics records exchange and stage instruments. Methods on a nil
// *Metrics are no-ops, so the engine calls them unconditionally.
type Metrics struct {
	exchanges        metric.Int64Counter
	exchangeDuration metric.Float64Histogram
	inFlight         metric.Int64UpDownCounter
	stageDuration    metric.Float64Histogram
	errors           metric.Int64Counter
}

// NewMetrics creates every instrument on meter. All creation errors are
// reported together.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m    Metrics
		errs []error
	)
	check := func(name string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	var err error
	m.exchanges, err = meter.Int64Counter(MetricExchanges,
		metric.WithDescription("Exchanges finished, by route and outcome"))
	check(MetricExchanges, err)
	m.exchangeDuration, err = meter.Float64Histogram(MetricExchangeDuration,
		metric.WithDescription("Time from admission to the end of an exchange"), metric.WithUnit("s"))
	check(MetricExchangeDuration, err)
	m.inFlight, err = meter.Int64UpDownCounter(MetricInFlight,
		metric.WithDescription("Exchanges admitted and not yet finished"))
	check(MetricInFlight, err)
	m.stageDuration, err = meter.Float64Histogram(MetricStageDuration,
		metric.WithDescription("Duration of one stage invocation"), metric.WithUnit("s"))
	check(MetricStageDuration, err)
	m.errors, err = meter.Int64Counter(MetricErrors,
		metric.WithDescription("Exchange failures by route and error code"))
	check(MetricErrors, err)

	if len(errs) > 0 {
		return nil, fmt.Errorf("observability: metrics: %w", errors.Join(errs...))
	}
	return &m, nil
}

// ExchangeAdmitted counts an exchange as in flight.
func (m *Metrics) ExchangeAdmitted(ctx context.Context, routeID string) {
	if m == nil {
		return
	}
	m.inFlight.Add(ctx, 1, metric.WithAttributes(attribute.String("route", routeID)))
}

// ExchangeFinished releases the in-flight count and records the outcome and
// duration.
func (m *Metrics) ExchangeFinished(ctx context.Context, routeID, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	route := attribute.String("route", routeID)
	m.inFlight.Add(ctx, -1, metric.WithAttributes(route))

	attrs := metric.WithAttributes(route, attribute.String("outcome", outcome))
	m.exchanges.Add(ctx, 1, attrs)
	m.exchangeDuration.Record(ctx, d.Seconds(), attrs)
}

// StageFinished records the duration of one stage invocation.
func (m *Metrics) StageFinished(ctx context.Context, routeID, stage, kind, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("route", routeID),
		attribute.String("stage", stage),
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
}

// RecordError counts a failure under its error code.
func (m *Metrics) RecordError(ctx context.Context, routeID, code string) {
	if m == nil {
		return
	}
	m.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", routeID),
		attribute.String("code", code),
	))
}
