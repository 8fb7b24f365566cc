package craft

import (
	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/logger"
	"github.com/kbukum/routekit/observability"
	"github.com/kbukum/routekit/route"
)

// Builder collects routes and options for a Context.
type Builder struct {
	opts   options
	routes []*route.Route
	ids    map[string]struct{}
	err    error
}

// New returns a builder configured with opts.
func New(opts ...Option) *Builder {
	b := &Builder{opts: options{cfg: DefaultConfig()}, ids: make(map[string]struct{})}
	for _, opt := range opts {
		opt(&b.opts)
	}
	return b
}

// Routes registers routes. A nil route or a duplicate id is reported by Build.
func (b *Builder) Routes(rs ...*route.Route) *Builder {
	for _, r := range rs {
		if b.err != nil {
			return b
		}
		if r == nil {
			b.err = errors.Configuration("route must not be nil")
			return b
		}
		if _, dup := b.ids[r.ID()]; dup {
			b.err = errors.Configuration("duplicate route id %q", r.ID()).WithDetail("route_id", r.ID())
			return b
		}
		b.ids[r.ID()] = struct{}{}
		b.routes = append(b.routes, r)
	}
	return b
}

// Build validates the configuration and returns a NotStarted Context.
// It performs no I/O.
func (b *Builder) Build() (*Context, error) {
	if b.err != nil {
		return nil, b.err
	}
	cfg := b.opts.cfg
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := b.opts.log
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	log = log.WithComponent(cfg.Name)

	observers := append([]observability.Observer{observability.NewLogObserver(log)}, b.opts.observers...)
	tracer := b.opts.tracer
	if tracer == nil {
		tracer = observability.NewTracer(nil)
	}

	routes := make([]*route.Route, len(b.routes))
	copy(routes, b.routes)
	return newContext(cfg, log, observability.Multi(observers...), tracer, b.opts.metrics, routes), nil
}
