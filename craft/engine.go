package craft

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/exchange"
	"github.com/kbukum/routekit/observability"
	"github.com/kbukum/routekit/route"
	"github.com/kbukum/routekit/source"
)

var errAbandoned = errors.New(errors.ErrCodeShutdownTimeout, "exchange abandoned at drain deadline")

// flight is one admitted exchange.
type flight struct {
	runner    *runner
	ex        *exchange.Exchange
	admitted  time.Time
	abandoned atomic.Bool
}

// admit pulls exchanges from r's source until it is exhausted, fails, or
// admission is cancelled.
func (c *Context) admit(r *runner) {
	defer c.loops.Done()
	defer r.stats.admitting.Store(false)

	c.emit(r.ctx, observability.Event{
		Type:    observability.EventRouteStarted,
		Level:   observability.LevelDebug,
		RouteID: r.id,
	})

	iter, err := openSource(r.ctx, r.route.Source())
	if err != nil {
		c.routeFailed(r, err)
		return
	}
	defer func() { _ = iter.Close() }()

	for {
		ex, ok, err := next(r.ctx, iter)
		switch {
		case r.ctx.Err() != nil:
			return
		case err != nil:
			c.routeFailed(r, err)
			return
		case !ok:
			c.emit(r.ctx, observability.Event{
				Type:    observability.EventRouteExhausted,
				Level:   observability.LevelInfo,
				RouteID: r.id,
				Data:    map[string]any{"admitted": r.stats.admitted.Load()},
			})
			return
		case ex == nil:
			c.routeFailed(r, fmt.Errorf("source returned a nil exchange"))
			return
		}

		if err := c.sem.Acquire(r.ctx, 1); err != nil {
			return
		}
		if !c.dispatch(r, ex) {
			c.sem.Release(1)
			return
		}
	}
}

func openSource(ctx context.Context, src source.Source) (iter source.Iterator[*exchange.Exchange], err error) {
	defer func() {
		if p := recover(); p != nil {
			iter, err = nil, fmt.Errorf("source panicked on open: %v", p)
		}
	}()
	return src.Open(ctx)
}

func next(ctx context.Context, iter source.Iterator[*exchange.Exchange]) (ex *exchange.Exchange, ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			ex, ok, err = nil, false, fmt.Errorf("source panicked: %v", p)
		}
	}()
	return iter.Next(ctx)
}

// dispatch registers ex as in flight and runs it on its own goroutine. It
// reports false when the context is no longer admitting.
func (c *Context) dispatch(r *runner, ex *exchange.Exchange) bool {
	ex = ex.WithHeader(exchange.HeaderRouteID, r.id)

	c.mu.Lock()
	if c.state != StateRunning || r.ctx.Err() != nil {
		c.mu.Unlock()
		return false
	}
	f := &flight{runner: r, ex: ex, admitted: time.Now()}
	c.flights[f] = struct{}{}
	c.work.Add(1)
	c.mu.Unlock()

	r.stats.admitted.Add(1)
	r.stats.inFlight.Add(1)
	c.metrics.ExchangeAdmitted(c.runCtx, r.id)
	c.emit(c.runCtx, observability.Event{
		Type:       observability.EventExchangeAdmitted,
		Level:      observability.LevelDebug,
		RouteID:    r.id,
		ExchangeID: ex.ID(),
	})

	go c.run(f)
	return true
}

// run passes one exchange through the route's steps in order. The first
// failing step ends the exchange; later steps, the sink included, are skipped.
func (c *Context) run(f *flight) {
	defer c.work.Done()
	defer c.sem.Release(1)

	r := f.runner
	ctx, span := c.tracer.StartExchange(c.runCtx, r.id, f.ex.ID())

	ex := f.ex
	var err error
	for _, st := range r.steps {
		if f.abandoned.Load() {
			break
		}
		if ex, err = c.invoke(ctx, r, st, ex); err != nil {
			break
		}
	}
	c.finish(ctx, f, span, err)
}

func (c *Context) invoke(ctx context.Context, r *runner, st route.Stage, in *exchange.Exchange) (out *exchange.Exchange, err error) {
	sctx, span := c.tracer.StartStage(ctx, r.id, st.Name, st.Kind.String())
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, fmt.Errorf("stage panicked: %v", p)
		}
		if err == nil && out == nil {
			err = fmt.Errorf("stage returned no exchange")
		}
		status, code := "ok", ""
		if err != nil {
			err = stageError(r.id, st, in, err)
			status, code = "error", codeOf(err)
		}
		observability.End(span, err, code)
		c.metrics.StageFinished(sctx, r.id, st.Name, st.Kind.String(), status, time.Since(start))
	}()

	if st.Kind == route.KindSink {
		return in, st.Sink.Send(sctx, in)
	}
	return st.Processor.Process(sctx, in)
}

func (c *Context) finish(ctx context.Context, f *flight, span trace.Span, err error) {
	c.mu.Lock()
	delete(c.flights, f)
	abandoned := f.abandoned.Load()
	c.mu.Unlock()

	r := f.runner
	r.stats.inFlight.Add(-1)
	d := time.Since(f.admitted)
	event := observability.Event{RouteID: r.id, ExchangeID: f.ex.ID(), Data: map[string]any{"duration_ms": d.Milliseconds()}}

	switch {
	case abandoned:
		observability.End(span, errAbandoned, string(errors.ErrCodeShutdownTimeout))
		c.metrics.ExchangeFinished(ctx, r.id, observability.OutcomeAbandoned, d)
		event.Type, event.Level, event.Err = observability.EventExchangeAbandoned, observability.LevelWarn, errAbandoned
		c.emit(ctx, event)

	case err != nil:
		r.stats.failed.Add(1)
		r.stats.setError(err)
		code := codeOf(err)
		observability.End(span, err, code)
		c.metrics.RecordError(ctx, r.id, code)
		c.metrics.ExchangeFinished(ctx, r.id, observability.OutcomeFailed, d)
		event.Type, event.Level, event.Err = observability.EventExchangeFailed, observability.LevelWarn, err
		event.Stage = stageOf(err)
		c.emit(ctx, event)
		if errors.IsFatal(err) {
			c.closeRoute(r, err)
		}

	default:
		r.stats.completed.Add(1)
		observability.End(span, nil, "")
		c.metrics.ExchangeFinished(ctx, r.id, observability.OutcomeCompleted, d)
		event.Type, event.Level = observability.EventExchangeCompleted, observability.LevelDebug
		c.emit(ctx, event)
	}
}

// closeRoute stops admission on r after a fatal exchange error. Other routes
// and r's exchanges already in flight are unaffected.
func (c *Context) closeRoute(r *runner, err error) {
	if !r.failed.CompareAndSwap(false, true) {
		return
	}
	r.cancel()
	c.emit(c.runCtx, observability.Event{
		Type:    observability.EventRouteFailed,
		Level:   observability.LevelError,
		RouteID: r.id,
		Err:     err,
		Data:    map[string]any{"reason": "fatal"},
	})
}

func (c *Context) routeFailed(r *runner, err error) {
	r.failed.Store(true)
	r.stats.setError(err)
	c.emit(c.runCtx, observability.Event{
		Type:    observability.EventRouteFailed,
		Level:   observability.LevelError,
		RouteID: r.id,
		Err:     err,
		Data:    map[string]any{"reason": "source"},
	})
}

// stageError attributes err to the stage and exchange it came from. FETCH
// and STAGE errors keep their code; anything else becomes STAGE_FAILED.
// Shared AppErrors are copied, never annotated in place.
func stageError(routeID string, st route.Stage, ex *exchange.Exchange, err error) error {
	details := map[string]any{
		"route_id":    routeID,
		"stage":       st.Name,
		"stage_kind":  st.Kind.String(),
		"exchange_id": ex.ID(),
	}

	var out *errors.AppError
	if appErr, ok := errors.AsAppError(err); ok && (appErr.Code == errors.ErrCodeFetch || appErr.Code == errors.ErrCodeStage) {
		out = appErr.Clone().WithDetails(details)
	} else {
		out = errors.StageFailed(st.Name, err).WithDetails(details)
	}
	if errors.IsFatal(err) {
		return errors.Fatal(out)
	}
	return out
}

func codeOf(err error) string {
	return string(errors.CodeOf(err))
}

func stageOf(err error) string {
	if appErr, ok := errors.AsAppError(err); ok {
		if v, ok := appErr.Detail("stage"); ok {
			s, _ := v.(string)
			return s
		}
	}
	return ""
}
