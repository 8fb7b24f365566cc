package sse

import (
	"context"
	"fmt"

	"github.com/kbukum/routekit/component"
)

var (
	_ component.Component   = (*Hub)(nil)
	_ component.Describable = (*Hub)(nil)
)

// Name implements component.Component.
func (h *Hub) Name() string { return "event-stream" }

// Start launches the delivery loop. A stopped hub cannot be restarted.
func (h *Hub) Start(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.done:
		return fmt.Errorf("sse: hub already stopped")
	default:
	}
	if h.running {
		return nil
	}
	h.running = true
	go h.run()
	return nil
}

// Stop disconnects every client and waits for the loop to exit.
func (h *Hub) Stop(ctx context.Context) error {
	h.mu.Lock()
	wasRunning := h.running
	h.running = false
	h.mu.Unlock()

	h.stopOnce.Do(func() { close(h.done) })
	if !wasRunning {
		return nil
	}
	select {
	case <-h.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Health implements component.Component.
func (h *Hub) Health(context.Context) component.Health {
	if !h.isRunning() {
		return component.Health{Name: h.Name(), Status: component.StatusUnhealthy, Message: "not running"}
	}
	return component.Health{
		Name:    h.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d clients connected", h.ClientCount()),
	}
}

// Describe implements component.Describable.
func (h *Hub) Describe() component.Description {
	return component.Description{
		Name:    "Event Stream",
		Type:    "sse",
		Details: fmt.Sprintf("client_buffer=%d", h.buffer),
	}
}
