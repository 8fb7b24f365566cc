package source

import (
	"context"
	"reflect"
	"time"

	"github.com/kbukum/routekit/exchange"
)

// wrapped decorates another source's iterator and keeps its declared type.
type wrapped struct {
	inner Source
	wrap  func(Iterator[*exchange.Exchange]) Iterator[*exchange.Exchange]
}

func (s *wrapped) Open(ctx context.Context) (Iterator[*exchange.Exchange], error) {
	iter, err := s.inner.Open(ctx)
	if err != nil {
		return nil, err
	}
	return s.wrap(iter), nil
}

// OutType forwards the inner source's body type, or nil when it declares none.
func (s *wrapped) OutType() reflect.Type {
	if t, ok := s.inner.(interface{ OutType() reflect.Type }); ok {
		return t.OutType()
	}
	return nil
}

// Filter keeps only exchanges whose body satisfies keep. Bodies of another
// type are dropped.
func Filter[T any](src Source, keep func(T) bool) Source {
	return &wrapped{inner: src, wrap: func(it Iterator[*exchange.Exchange]) Iterator[*exchange.Exchange] {
		return &filterIter[T]{source: it, keep: keep}
	}}
}

type filterIter[T any] struct {
	source Iterator[*exchange.Exchange]
	keep   func(T) bool
}

func (it *filterIter[T]) Next(ctx context.Context) (*exchange.Exchange, bool, error) {
	for {
		ex, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return ex, ok, err
		}
		if body, typed := ex.Body().(T); typed && it.keep(body) {
			return ex, true, nil
		}
	}
}

func (it *filterIter[T]) Close() error { return it.source.Close() }

// Take exhausts after n exchanges. It turns an unbounded source such as
// Channel into a finite one.
func Take(src Source, n int) Source {
	return &wrapped{inner: src, wrap: func(it Iterator[*exchange.Exchange]) Iterator[*exchange.Exchange] {
		return &takeIter{source: it, remaining: n}
	}}
}

type takeIter struct {
	source    Iterator[*exchange.Exchange]
	remaining int
}

func (it *takeIter) Next(ctx context.Context) (*exchange.Exchange, bool, error) {
	if it.remaining <= 0 {
		return nil, false, nil
	}
	ex, ok, err := it.source.Next(ctx)
	if ok && err == nil {
		it.remaining--
	}
	return ex, ok, err
}

func (it *takeIter) Close() error { return it.source.Close() }

// Throttle drops exchanges that arrive within interval of the last one
// emitted. The first exchange always passes.
func Throttle(src Source, interval time.Duration) Source {
	return &wrapped{inner: src, wrap: func(it Iterator[*exchange.Exchange]) Iterator[*exchange.Exchange] {
		return &throttleIter{source: it, interval: interval, now: time.Now}
	}}
}

type throttleIter struct {
	source   Iterator[*exchange.Exchange]
	interval time.Duration
	lastEmit time.Time
	now      func() time.Time
}

func (it *throttleIter) Next(ctx context.Context) (*exchange.Exchange, bool, error) {
	for {
		ex, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return ex, ok, err
		}
		now := it.now()
		if it.lastEmit.IsZero() || now.Sub(it.lastEmit) >= it.interval {
			it.lastEmit = now
			return ex, true, nil
		}
	}
}

func (it *throttleIter) Close() error { return it.source.Close() }
