package observability

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Level is the severity of an event.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	default:
		return "error"
	}
}

// ZerologLevel maps the level onto zerolog.
func (l Level) ZerologLevel() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// EventType names what happened.
type EventType string

const (
	EventContextStarted  EventType = "context.started"
	EventContextStopping EventType = "context.stopping"
	EventContextStopped  EventType = "context.stopped"

	EventRouteStarted EventType = "route.started"
	// EventRouteExhausted is emitted when a route's source has no more exchanges.
	EventRouteExhausted EventType = "route.exhausted"
	// EventRouteFailed is emitted when a source fails or a fatal error closes admission.
	EventRouteFailed EventType = "route.failed"

	EventExchangeAdmitted  EventType = "exchange.admitted"
	EventExchangeCompleted EventType = "exchange.completed"
	EventExchangeFailed    EventType = "exchange.failed"
	// EventExchangeAbandoned is emitted for each exchange cut off by the drain deadline.
	EventExchangeAbandoned EventType = "exchange.abandoned"

	EventShutdownTimeout EventType = "shutdown.timeout"
)

// Event is emitted by the execution context. Route, exchange and stage
// identifiers are empty when they do not apply.
type Event struct {
	Type       EventType
	Level      Level
	Timestamp  time.Time
	RouteID    string
	ExchangeID string
	Stage      string
	Err        error
	Data       map[string]any
}

// Observer receives events. Implementations must be safe for concurrent use
// and must not block; they run on the engine's goroutines.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, event Event)

// OnEvent implements Observer.
func (f ObserverFunc) OnEvent(ctx context.Context, event Event) { f(ctx, event) }

type multi []Observer

// Multi fans events out to every non-nil observer, in order.
func Multi(observers ...Observer) Observer {
	out := make(multi, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (m multi) OnEvent(ctx context.Context, event Event) {
	for _, o := range m {
		o.OnEvent(ctx, event)
	}
}

// Noop discards all events.
type Noop struct{}

// OnEvent implements Observer.
func (Noop) OnEvent(context.Context, Event) {}
