package testutil

import (
	"context"
	"sync"

	"github.com/kbukum/routekit/exchange"
	"github.com/kbukum/routekit/route"
)

var _ route.Sink = (*CollectSink)(nil)

// CollectSink records every exchange it receives. Safe for concurrent use.
type CollectSink struct {
	mu        sync.Mutex
	exchanges []*exchange.Exchange
	err       error
}

// NewCollectSink returns an empty sink.
func NewCollectSink() *CollectSink { return &CollectSink{} }

// FailWith makes later Send calls record the exchange and return err.
func (s *CollectSink) FailWith(err error) *CollectSink {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	return s
}

// Send implements route.Sink.
func (s *CollectSink) Send(_ context.Context, ex *exchange.Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges = append(s.exchanges, ex)
	return s.err
}

// Len returns the number of exchanges received.
func (s *CollectSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.exchanges)
}

// Exchanges returns a copy of the received exchanges in arrival order.
func (s *CollectSink) Exchanges() []*exchange.Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*exchange.Exchange, len(s.exchanges))
	copy(out, s.exchanges)
	return out
}

// Bodies returns the received bodies in arrival order.
func (s *CollectSink) Bodies() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]any, len(s.exchanges))
	for i, ex := range s.exchanges {
		out[i] = ex.Body()
	}
	return out
}
