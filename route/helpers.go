package route

import (
	"context"
	"reflect"

	"github.com/kbukum/routekit/exchange"
	"github.com/kbukum/routekit/resilience"
)

type typedTransform[I, O any] struct {
	fn func(ctx context.Context, in I) (O, error)
}

// Transform maps the body of each exchange from I to O. Headers and id are
// carried over. A body that is not an I fails the exchange.
func Transform[I, O any](fn func(ctx context.Context, in I) (O, error)) Processor {
	return &typedTransform[I, O]{fn: fn}
}

func (t *typedTransform[I, O]) Process(ctx context.Context, ex *exchange.Exchange) (*exchange.Exchange, error) {
	in, err := exchange.BodyAs[I](ex)
	if err != nil {
		return nil, err
	}
	out, err := t.fn(ctx, in)
	if err != nil {
		return nil, err
	}
	return ex.WithBody(out), nil
}

func (t *typedTransform[I, O]) InType() reflect.Type  { return reflect.TypeFor[I]() }
func (t *typedTransform[I, O]) OutType() reflect.Type { return reflect.TypeFor[O]() }

// TransformExchange maps whole exchanges, for steps that need headers.
func TransformExchange(fn func(ctx context.Context, ex *exchange.Exchange) (*exchange.Exchange, error)) Processor {
	return ProcessorFunc(fn)
}

// wrapped forwards type declarations of the processor it decorates.
type wrapped struct {
	inner Processor
	name  string
	run   func(ctx context.Context, ex *exchange.Exchange) (*exchange.Exchange, error)
}

func (w *wrapped) Process(ctx context.Context, ex *exchange.Exchange) (*exchange.Exchange, error) {
	return w.run(ctx, ex)
}

func (w *wrapped) StageName() string {
	if w.name != "" {
		return w.name
	}
	if n, ok := w.inner.(Namer); ok {
		return n.StageName()
	}
	return ""
}

func (w *wrapped) Validate() error {
	if v, ok := w.inner.(Validator); ok {
		return v.Validate()
	}
	return nil
}

func (w *wrapped) InType() reflect.Type {
	if t, ok := w.inner.(InTyped); ok {
		return t.InType()
	}
	return nil
}

func (w *wrapped) OutType() reflect.Type {
	if t, ok := w.inner.(OutTyped); ok {
		return t.OutType()
	}
	return nil
}

// Named gives a processor a stage name used in logs, spans and errors.
func Named(name string, p Processor) Processor {
	return &wrapped{inner: p, name: name, run: p.Process}
}

type namedSink struct {
	Sink
	name string
}

func (s *namedSink) StageName() string { return s.name }

func (s *namedSink) InType() reflect.Type {
	if t, ok := s.Sink.(InTyped); ok {
		return t.InType()
	}
	return nil
}

// NamedSink gives a sink a stage name.
func NamedSink(name string, s Sink) Sink {
	return &namedSink{Sink: s, name: name}
}

// Retry re-runs p on failure according to cfg. The engine itself never
// retries; this is the opt-in policy for a single stage.
func Retry(p Processor, cfg resilience.RetryConfig) Processor {
	return &wrapped{
		inner: p,
		run: func(ctx context.Context, ex *exchange.Exchange) (*exchange.Exchange, error) {
			return resilience.Retry(ctx, cfg, func(ctx context.Context, _ int) (*exchange.Exchange, error) {
				return p.Process(ctx, ex)
			})
		},
	}
}
