package craft

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/logger"
	"github.com/kbukum/routekit/observability"
	"github.com/kbukum/routekit/route"
)

// Context runs a fixed set of routes. It is started once and stopped once;
// a stopped Context cannot be restarted.
type Context struct {
	cfg      Config
	log      *logger.Logger
	observer observability.Observer
	tracer   *observability.Tracer
	metrics  *observability.Metrics
	runners  []*runner

	mu      sync.Mutex
	state   State
	handle  *Handle
	flights map[*flight]struct{}

	admitCtx    context.Context
	admitCancel context.CancelFunc
	runCtx      context.Context
	runCancel   context.CancelFunc

	sem     *semaphore.Weighted
	loops   sync.WaitGroup
	work    sync.WaitGroup
	drained chan struct{}
	stopped chan struct{}
}

// runner is the per-route admission state.
type runner struct {
	route  *route.Route
	id     string
	steps  []route.Stage
	stats  counters
	failed atomic.Bool
	ctx    context.Context
	cancel context.CancelFunc
}

func newContext(cfg Config, log *logger.Logger, obs observability.Observer,
	tracer *observability.Tracer, metrics *observability.Metrics, routes []*route.Route) *Context {
	c := &Context{
		cfg:      cfg,
		log:      log,
		observer: obs,
		tracer:   tracer,
		metrics:  metrics,
		flights:  make(map[*flight]struct{}),
		sem:      semaphore.NewWeighted(cfg.MaxInFlight),
		drained:  make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, r := range routes {
		c.runners = append(c.runners, &runner{route: r, id: r.ID(), steps: r.Steps()})
	}
	return c
}

// Name returns the configured context name.
func (c *Context) Name() string { return c.cfg.Name }

// State returns the current lifecycle state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Routes returns the ids of the registered routes in registration order.
func (c *Context) Routes() []string {
	ids := make([]string, len(c.runners))
	for i, r := range c.runners {
		ids[i] = r.id
	}
	return ids
}

// Stats returns a snapshot of every route's counters.
func (c *Context) Stats() []RouteStats {
	out := make([]RouteStats, len(c.runners))
	for i, r := range c.runners {
		out[i] = r.stats.snapshot(r.id)
	}
	return out
}

// Start begins admitting exchanges on every route and returns immediately.
// Calling Start on a running Context returns the existing handle. Starting a
// stopping or stopped Context is a lifecycle error.
//
// Work started here outlives ctx's cancellation; only Stop ends it.
func (c *Context) Start(ctx context.Context) (*Handle, error) {
	c.mu.Lock()
	switch c.state {
	case StateRunning:
		h := c.handle
		c.mu.Unlock()
		return h, nil
	case StateStopping, StateStopped:
		state := c.state
		c.mu.Unlock()
		return nil, errors.Lifecycle("start", state.String())
	}

	base := context.WithoutCancel(ctx)
	c.admitCtx, c.admitCancel = context.WithCancel(base)
	c.runCtx, c.runCancel = context.WithCancel(base)
	c.handle = newHandle()
	c.state = StateRunning
	for _, r := range c.runners {
		r.ctx, r.cancel = context.WithCancel(c.admitCtx)
		r.stats.admitting.Store(true)
		c.loops.Add(1)
	}
	c.mu.Unlock()

	c.emit(ctx, observability.Event{
		Type:  observability.EventContextStarted,
		Level: observability.LevelInfo,
		Data:  map[string]any{"routes": len(c.runners), "max_in_flight": c.cfg.MaxInFlight},
	})
	for _, r := range c.runners {
		go c.admit(r)
	}
	go c.awaitDrain()
	return c.handle, nil
}

// awaitDrain ends the run naturally once every source is done and every
// admitted exchange has finished.
func (c *Context) awaitDrain() {
	c.loops.Wait()
	c.work.Wait()
	close(c.drained)
	c.handle.finish(nil)
}

// Stop halts admission on every route and waits for in-flight exchanges,
// bounded by the grace period and ctx. Exchanges still running when the
// bound is hit are abandoned: their remaining stages do not run, and Stop
// returns a SHUTDOWN_TIMEOUT error naming how many were cut off.
//
// Stop on a Context that was never started is a lifecycle error. Later or
// concurrent calls wait for the first one to finish and return nil.
func (c *Context) Stop(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateNotStarted:
		c.mu.Unlock()
		return errors.Lifecycle("stop", StateNotStarted.String())
	case StateStopping, StateStopped:
		stopped := c.stopped
		c.mu.Unlock()
		select {
		case <-stopped:
		case <-ctx.Done():
		}
		return nil
	}
	c.state = StateStopping
	c.mu.Unlock()

	c.emit(ctx, observability.Event{Type: observability.EventContextStopping, Level: observability.LevelInfo})
	c.admitCancel()

	grace := time.NewTimer(c.cfg.StopGracePeriod)
	defer grace.Stop()

	var err error
	select {
	case <-c.drained:
	case <-grace.C:
		err = c.abandon(ctx)
	case <-ctx.Done():
		err = c.abandon(ctx)
	}
	c.runCancel()

	c.mu.Lock()
	c.state = StateStopped
	c.mu.Unlock()
	close(c.stopped)
	c.handle.finish(err)

	c.emit(ctx, observability.Event{
		Type:  observability.EventContextStopped,
		Level: observability.LevelInfo,
		Err:   err,
	})
	return err
}

// abandon marks every in-flight exchange abandoned and cancels their work.
func (c *Context) abandon(ctx context.Context) error {
	c.mu.Lock()
	var n int64
	for f := range c.flights {
		if f.abandoned.CompareAndSwap(false, true) {
			f.runner.stats.abandoned.Add(1)
			n++
		}
	}
	c.mu.Unlock()
	c.runCancel()

	if n == 0 {
		return nil
	}
	err := errors.ShutdownTimeout(n)
	c.emit(ctx, observability.Event{
		Type:  observability.EventShutdownTimeout,
		Level: observability.LevelWarn,
		Err:   err,
		Data:  map[string]any{"abandoned": n},
	})
	return err
}

// Run starts the Context and blocks until the run ends on its own or ctx is
// done, then stops it. Stop receives a context that is not cancelled with
// ctx, so the grace period still applies.
func (c *Context) Run(ctx context.Context) error {
	h, err := c.Start(ctx)
	if err != nil {
		return err
	}
	select {
	case <-h.Done():
	case <-ctx.Done():
	}
	if err := c.Stop(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	return h.Err()
}

func (c *Context) emit(ctx context.Context, e observability.Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	c.observer.OnEvent(ctx, e)
}
