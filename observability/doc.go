// Package observability carries the engine's lifecycle and exchange events,
// OpenTelemetry stage spans and exchange metrics.
//
// Events go to an Observer. LogObserver writes them through the zerolog
// logger, Multi fans them out:
//
//	obs := observability.Multi(observability.NewLogObserver(log), myObserver)
//
// Tracing and metrics default to the global OpenTelemetry providers, which
// are no-ops until InitTracer / InitMeter install OTLP exporters:
//
//	tp, err := observability.InitTracer(ctx, cfg.Resource, cfg.Tracing)
//	defer tp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(otel.Meter("routekit"))
package observability
