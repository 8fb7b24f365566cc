package source

import (
	"context"
	"reflect"

	"github.com/kbukum/routekit/exchange"
)

// Iterator provides pull-based sequential access to a stream of values.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	// A cancelled ctx yields ctx.Err().
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// Source opens a fresh exchange iterator for one execution of a route.
type Source interface {
	Open(ctx context.Context) (Iterator[*exchange.Exchange], error)
}

// Func adapts a function to Source.
type Func func(ctx context.Context) (Iterator[*exchange.Exchange], error)

// Open implements Source.
func (f Func) Open(ctx context.Context) (Iterator[*exchange.Exchange], error) {
	return f(ctx)
}

// FromFunc creates an untyped source from an iterator factory.
func FromFunc(fn func(ctx context.Context) (Iterator[*exchange.Exchange], error)) Source {
	return Func(fn)
}

// typed wraps a body iterator factory and declares the body type T.
type typed[T any] struct {
	open func(ctx context.Context) (Iterator[T], error)
}

func (s *typed[T]) Open(ctx context.Context) (Iterator[*exchange.Exchange], error) {
	iter, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	return &bodyIter[T]{source: iter}, nil
}

// OutType reports the body type this source emits.
func (s *typed[T]) OutType() reflect.Type { return reflect.TypeFor[T]() }

// From creates a source that wraps each value pulled from iter in a new exchange.
// The iterator is shared, so the source can be opened only once meaningfully.
func From[T any](iter Iterator[T]) Source {
	return &typed[T]{open: func(context.Context) (Iterator[T], error) { return iter, nil }}
}

// bodyIter lifts body values into fresh exchanges.
type bodyIter[T any] struct {
	source Iterator[T]
}

func (it *bodyIter[T]) Next(ctx context.Context) (*exchange.Exchange, bool, error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	return exchange.New(val), true, nil
}

func (it *bodyIter[T]) Close() error { return it.source.Close() }
