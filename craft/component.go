package craft

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/routekit/component"
)

// Component adapts a Context to the component lifecycle used by the
// bootstrap registry.
type Component struct {
	ctx *Context
}

// Component returns a lifecycle adapter for c.
func (c *Context) Component() *Component { return &Component{ctx: c} }

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Context returns the adapted execution context.
func (a *Component) Context() *Context { return a.ctx }

// Name implements component.Component.
func (a *Component) Name() string { return a.ctx.Name() }

// Start implements component.Component.
func (a *Component) Start(ctx context.Context) error {
	_, err := a.ctx.Start(ctx)
	return err
}

// Stop implements component.Component.
func (a *Component) Stop(ctx context.Context) error { return a.ctx.Stop(ctx) }

// Health reports healthy while running, degraded while stopping or when a
// route stopped admitting after a failure.
func (a *Component) Health(_ context.Context) component.Health {
	h := component.Health{Name: a.Name()}
	switch state := a.ctx.State(); state {
	case StateRunning:
		var failed []string
		for _, r := range a.ctx.runners {
			if r.failed.Load() {
				failed = append(failed, r.id)
			}
		}
		if len(failed) > 0 {
			h.Status = component.StatusDegraded
			h.Message = "routes failed: " + strings.Join(failed, ",")
			return h
		}
		h.Status = component.StatusHealthy
	case StateStopping:
		h.Status = component.StatusDegraded
		h.Message = state.String()
	default:
		h.Status = component.StatusUnhealthy
		h.Message = state.String()
	}
	return h
}

// Describe implements component.Describable.
func (a *Component) Describe() component.Description {
	return component.Description{
		Name: "Execution Context",
		Type: "craft",
		Details: fmt.Sprintf("routes=%d max_in_flight=%d grace=%s",
			len(a.ctx.runners), a.ctx.cfg.MaxInFlight, a.ctx.cfg.StopGracePeriod),
	}
}
