package sink

import (
	"context"
	"fmt"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/kbukum/routekit/exchange"
	"github.com/kbukum/routekit/logger"
	"github.com/kbukum/routekit/route"
)

// LogOption configures the log sink.
type LogOption func(*logSink)

// WithMessage sets the log message. Defaults to "exchange received".
func WithMessage(msg string) LogOption {
	return func(s *logSink) { s.msg = msg }
}

// WithLevel sets the log level. Defaults to info.
func WithLevel(level zerolog.Level) LogOption {
	return func(s *logSink) { s.level = level }
}

// WithHeaders includes exchange headers in each entry.
func WithHeaders() LogOption {
	return func(s *logSink) { s.headers = true }
}

type logSink struct {
	log     *logger.Logger
	msg     string
	level   zerolog.Level
	headers bool
}

// Log returns a sink that writes one structured entry per exchange with
// the route id, exchange id and body. A nil logger uses the global one.
func Log(l *logger.Logger, opts ...LogOption) route.Sink {
	s := &logSink{log: l, msg: "exchange received", level: zerolog.InfoLevel}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *logSink) StageName() string { return "log" }

func (s *logSink) Send(_ context.Context, ex *exchange.Exchange) error {
	l := s.log
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	zl := l.Zerolog()
	event := zl.WithLevel(s.level).
		Str(logger.FieldRouteID, ex.HeaderString(exchange.HeaderRouteID)).
		Str(logger.FieldExchangeID, ex.ID())

	switch body := ex.Body().(type) {
	case string:
		event = event.Str(logger.FieldBody, body)
	case fmt.Stringer:
		event = event.Str(logger.FieldBody, body.String())
	default:
		event = event.Interface(logger.FieldBody, body)
	}
	if s.headers {
		event = event.Interface("headers", ex.Headers())
	}
	event.Msg(s.msg)
	return nil
}

type noop struct{}

// Noop returns a sink that discards every exchange.
func Noop() route.Sink { return noop{} }

func (noop) StageName() string                              { return "noop" }
func (noop) Send(context.Context, *exchange.Exchange) error { return nil }

type funcSink[T any] struct {
	fn func(ctx context.Context, body T) error
}

// Func returns a sink that hands each body, asserted to T, to fn.
func Func[T any](fn func(ctx context.Context, body T) error) route.Sink {
	return &funcSink[T]{fn: fn}
}

func (s *funcSink[T]) InType() reflect.Type { return reflect.TypeFor[T]() }

func (s *funcSink[T]) Send(ctx context.Context, ex *exchange.Exchange) error {
	body, err := exchange.BodyAs[T](ex)
	if err != nil {
		return err
	}
	return s.fn(ctx, body)
}
