package route

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kbukum/routekit/exchange"
	"github.com/kbukum/routekit/source"
)

// Kind is the role a stage plays in a route.
type Kind int

const (
	KindSource Kind = iota
	KindEnrich
	KindTransform
	KindSink
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindEnrich:
		return "enrich"
	case KindTransform:
		return "transform"
	case KindSink:
		return "sink"
	default:
		return "unknown"
	}
}

// Processor is an enrich or transform step. It receives the current
// exchange and returns its successor, or an error that aborts the exchange.
type Processor interface {
	Process(ctx context.Context, ex *exchange.Exchange) (*exchange.Exchange, error)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, ex *exchange.Exchange) (*exchange.Exchange, error)

// Process implements Processor.
func (f ProcessorFunc) Process(ctx context.Context, ex *exchange.Exchange) (*exchange.Exchange, error) {
	return f(ctx, ex)
}

// Sink is the terminal consumer of a route.
type Sink interface {
	Send(ctx context.Context, ex *exchange.Exchange) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ex *exchange.Exchange) error

// Send implements Sink.
func (f SinkFunc) Send(ctx context.Context, ex *exchange.Exchange) error {
	return f(ctx, ex)
}

// InTyped is implemented by stages that accept a specific body type.
type InTyped interface {
	InType() reflect.Type
}

// OutTyped is implemented by stages that produce a specific body type.
type OutTyped interface {
	OutType() reflect.Type
}

// Validator is implemented by stages that can check their own
// configuration. Build reports a failing Validate as a configuration error.
type Validator interface {
	Validate() error
}

// Namer is implemented by stages that carry their own name.
type Namer interface {
	StageName() string
}

// Stage is one step of a built route. Exactly one of Source, Processor and
// Sink is set, according to Kind. In and Out are nil for untyped stages.
type Stage struct {
	Kind      Kind
	Name      string
	In        reflect.Type
	Out       reflect.Type
	Source    source.Source
	Processor Processor
	Sink      Sink
}

func (s Stage) String() string {
	return fmt.Sprintf("%s(%s)", s.Kind, s.Name)
}

// newStage captures naming and type declarations from impl.
func newStage(kind Kind, name string, impl any) Stage {
	st := Stage{Kind: kind, Name: name}
	if n, ok := impl.(Namer); ok && n.StageName() != "" {
		st.Name = n.StageName()
	}
	if t, ok := impl.(InTyped); ok {
		st.In = t.InType()
	}
	if t, ok := impl.(OutTyped); ok {
		st.Out = t.OutType()
	}
	return st
}
