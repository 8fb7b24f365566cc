package observability

import (
	"context"

	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/logger"
)

// LogObserver writes events through the structured logger. The event type
// becomes the message and Data keys are flattened into the entry.
type LogObserver struct {
	log *logger.Logger
	min Level
}

// NewLogObserver creates a LogObserver. Events below LevelInfo are dropped
// unless WithMinLevel lowers the threshold.
func NewLogObserver(l *logger.Logger) *LogObserver {
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	return &LogObserver{log: l.WithComponent("craft"), min: LevelInfo}
}

// WithMinLevel returns a copy that emits events at or above min.
func (o *LogObserver) WithMinLevel(min Level) *LogObserver {
	return &LogObserver{log: o.log, min: min}
}

// OnEvent implements Observer.
func (o *LogObserver) OnEvent(_ context.Context, event Event) {
	if event.Level < o.min {
		return
	}
	zl := o.log.Zerolog()
	entry := zl.WithLevel(event.Level.ZerologLevel())
	if event.RouteID != "" {
		entry = entry.Str(logger.FieldRouteID, event.RouteID)
	}
	if event.ExchangeID != "" {
		entry = entry.Str(logger.FieldExchangeID, event.ExchangeID)
	}
	if event.Stage != "" {
		entry = entry.Str(logger.FieldStage, event.Stage)
	}
	if event.Err != nil {
		entry = entry.Err(event.Err)
		if appErr, ok := errors.AsAppError(event.Err); ok {
			entry = entry.Str(logger.FieldErrorCode, string(appErr.Code))
		}
	}
	for k, v := range event.Data {
		entry = entry.Interface(k, v)
	}
	entry.Msg(string(event.Type))
}
