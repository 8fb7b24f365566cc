package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kbukum/routekit/logger"
	"github.com/kbukum/routekit/observability"
)

var _ observability.Observer = (*Hub)(nil)

// Payload is the JSON data of one streamed event.
type Payload struct {
	Type       string         `json:"type"`
	Level      string         `json:"level"`
	Timestamp  time.Time      `json:"timestamp"`
	RouteID    string         `json:"route_id,omitempty"`
	ExchangeID string         `json:"exchange_id,omitempty"`
	Stage      string         `json:"stage,omitempty"`
	Error      string         `json:"error,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// OnEvent implements observability.Observer.
func (h *Hub) OnEvent(_ context.Context, ev observability.Event) {
	p := Payload{
		Type:       string(ev.Type),
		Level:      ev.Level.String(),
		Timestamp:  ev.Timestamp,
		RouteID:    ev.RouteID,
		ExchangeID: ev.ExchangeID,
		Stage:      ev.Stage,
		Data:       ev.Data,
	}
	if ev.Err != nil {
		p.Error = ev.Err.Error()
	}
	frame, err := encode(p.Type, p)
	if err != nil {
		h.log.Warn("event not encodable", logger.Fields("type", p.Type, "error", err.Error()))
		return
	}
	h.Publish(ev.RouteID, frame)
}

// encode renders one SSE frame.
func encode(event string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", event, data), nil
}
