package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/kbukum/routekit"

// Span names. Stage spans are suffixed with the stage kind.
const (
	SpanExchange = "craft.exchange"
	SpanStage    = "craft.stage"
)

// Span attribute keys.
const (
	AttrRouteID    = "craft.route.id"
	AttrExchangeID = "craft.exchange.id"
	AttrStage      = "craft.stage.name"
	AttrStageKind  = "craft.stage.kind"
	AttrErrorCode  = "error.code"
)

// Tracer opens one span per exchange with a child per stage. The zero
// value and a nil *Tracer both use the global provider.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer binds a Tracer to tp, or to the global provider when tp is nil.
func NewTracer(tp trace.TracerProvider) *Tracer {
	if tp == nil {
		return &Tracer{}
	}
	return &Tracer{tracer: tp.Tracer(instrumentationName)}
}

func (t *Tracer) current() trace.Tracer {
	if t != nil && t.tracer != nil {
		return t.tracer
	}
	return otel.Tracer(instrumentationName)
}

// StartExchange opens the root span of one exchange.
func (t *Tracer) StartExchange(ctx context.Context, routeID, exchangeID string) (context.Context, trace.Span) {
	return t.current().Start(ctx, SpanExchange,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(AttrRouteID, routeID),
			attribute.String(AttrExchangeID, exchangeID),
		),
	)
}

// StartStage opens a child span for one stage invocation.
func (t *Tracer) StartStage(ctx context.Context, routeID, stage, kind string) (context.Context, trace.Span) {
	return t.current().Start(ctx, SpanStage+"."+kind, trace.WithAttributes(
		attribute.String(AttrRouteID, routeID),
		attribute.String(AttrStage, stage),
		attribute.String(AttrStageKind, kind),
	))
}

// End marks span failed when err is set, tags it with the error code and
// ends it.
func End(span trace.Span, err error, code string) {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if code != "" {
		span.SetAttributes(attribute.String(AttrErrorCode, code))
	}
}
