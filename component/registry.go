package component

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/logger"
)

type entry struct {
	component Component
	started   bool
}

// Registry manages component lifecycle with deterministic ordering.
type Registry struct {
	mu          sync.RWMutex
	entries     []*entry
	lookup      map[string]*entry
	log         *logger.Logger
	stopTimeout time.Duration
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger. Defaults to the global logger.
func WithRegistryLogger(l *logger.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

// WithStopTimeout bounds each component's Stop. Zero leaves only the
// caller's deadline.
func WithStopTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) { r.stopTimeout = d }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{lookup: make(map[string]*entry)}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.GetGlobalLogger()
	}
	r.log = r.log.WithComponent("registry")
	return r
}

// Register adds c. Names must be unique.
func (r *Registry) Register(c Component) error {
	if c == nil {
		return errors.Configuration("component must not be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.lookup[name]; exists {
		return errors.Configuration("component %s already registered", name)
	}
	e := &entry{component: c}
	r.entries = append(r.entries, e)
	r.lookup[name] = e

	r.log.Debug("component registered", logger.Fields("component", name))
	return nil
}

// StartAll starts every component in registration order. If one fails, the
// components already started are stopped again, in reverse, before the
// error is returned.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("starting components", logger.Fields("count", len(r.entries)))
	for _, e := range r.entries {
		name := e.component.Name()
		if err := e.component.Start(ctx); err != nil {
			r.log.Error("component start failed", logger.Fields("component", name, "error", err.Error()))
			if stopErr := r.stopStarted(context.WithoutCancel(ctx)); stopErr != nil {
				err = errors.Join(err, stopErr)
			}
			return fmt.Errorf("start %s: %w", name, err)
		}
		e.started = true
		r.log.Debug("component started", logger.Fields("component", name))
	}
	return nil
}

// StopAll stops every started component in reverse registration order and
// returns all stop errors joined.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("stopping components")
	return r.stopStarted(ctx)
}

func (r *Registry) stopStarted(ctx context.Context) error {
	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !e.started {
			continue
		}
		name := e.component.Name()

		stopCtx, cancel := ctx, context.CancelFunc(func() {})
		if r.stopTimeout > 0 {
			stopCtx, cancel = context.WithTimeout(ctx, r.stopTimeout)
		}
		start := time.Now()
		if err := e.component.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", name, err))
			r.log.Error("component stop failed", logger.Fields("component", name, "error", err.Error()))
		} else {
			r.log.Info("component stopped", logger.DurationFields(name, time.Since(start)))
		}
		cancel()
		e.started = false
	}
	return errors.Join(errs...)
}

// HealthAll returns the health of every component in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]Health, 0, len(r.entries))
	for _, e := range r.entries {
		h := e.component.Health(ctx)
		if h.Name == "" {
			h.Name = e.component.Name()
		}
		results = append(results, h)
	}
	return results
}

// Get returns a registered component by name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.lookup[name]; ok {
		return e.component
	}
	return nil
}

// All returns the registered components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Component, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.component
	}
	return out
}
