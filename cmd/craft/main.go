// Command craft runs the shipped routes inside one execution context.
//
// By default it runs as a task: it exits once every route's source is
// exhausted and all exchanges have finished. With mode: service it keeps
// running until SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/routekit/bootstrap"
	"github.com/kbukum/routekit/component"
	"github.com/kbukum/routekit/config"
	"github.com/kbukum/routekit/craft"
	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/httpclient"
	"github.com/kbukum/routekit/observability"
	"github.com/kbukum/routekit/routes"
	"github.com/kbukum/routekit/server"
	"github.com/kbukum/routekit/sse"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "craft: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg Config
	if err := config.LoadConfig("craft", &cfg, config.WithEnvPrefix("CRAFT")); err != nil {
		return err
	}
	app, err := bootstrap.NewApp(&cfg, bootstrap.WithGracefulTimeout(cfg.Craft.StopGracePeriod+cfg.Server.ShutdownTimeout))
	if err != nil {
		return err
	}

	// Providers are registered first so they stop last and flush what the
	// engine records while draining.
	opts, err := telemetry(ctx, app)
	if err != nil {
		return err
	}
	client, err := httpclient.New(cfg.HTTP)
	if err != nil {
		return err
	}
	rs, err := routes.All(cfg.Routes, routes.WithClient(client), routes.WithLogger(app.Logger))
	if err != nil {
		return err
	}
	opts = append(opts, craft.WithConfig(cfg.Craft), craft.WithLogger(app.Logger))

	// The event hub only has subscribers when the admin server is up. It
	// starts before the engine so no events are missed, and its streams
	// are closed by a stop hook so the server can drain.
	var hub *sse.Hub
	if cfg.Server.Enabled {
		hub = sse.NewHub(sse.WithLogger(app.Logger))
		if err := app.RegisterComponent(hub); err != nil {
			return err
		}
		app.OnStop(hub.Stop)
		opts = append(opts, craft.WithObserver(hub))
	}

	cc, err := craft.New(opts...).
		Routes(rs...).
		Build()
	if err != nil {
		return err
	}
	if err := app.RegisterComponent(cc.Component()); err != nil {
		return err
	}

	if cfg.Server.Enabled {
		srv := server.New(cfg.Server, app.Logger)
		srv.RegisterAdmin(server.Admin{
			Service:  cfg.Name,
			Health:   app.Components.HealthAll,
			Contexts: []server.ContextReporter{cc},
			Events:   hub.Handler(),
		})
		if err := app.RegisterComponent(srv); err != nil {
			return err
		}
	}

	if cfg.Mode == modeService {
		return app.Run(ctx)
	}
	return app.RunTask(ctx, func(ctx context.Context) error {
		// Start is idempotent while running and hands back the live handle.
		h, err := cc.Start(ctx)
		if err != nil {
			return err
		}
		if err := h.Wait(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
}

// telemetry installs the OTLP providers enabled in the config and returns
// the craft options that use them.
func telemetry(ctx context.Context, app *bootstrap.App[*Config]) ([]craft.Option, error) {
	obs := app.Cfg.Observability
	var opts []craft.Option

	if obs.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, obs.Resource, obs.Tracing)
		if err != nil {
			return nil, err
		}
		if err := app.RegisterComponent(provider("tracer-provider", tp.Shutdown)); err != nil {
			return nil, err
		}
		opts = append(opts, craft.WithTracer(observability.NewTracer(tp)))
	}
	if obs.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, obs.Resource, obs.Metrics)
		if err != nil {
			return nil, err
		}
		if err := app.RegisterComponent(provider("meter-provider", mp.Shutdown)); err != nil {
			return nil, err
		}
		metrics, err := observability.NewMetrics(mp.Meter("github.com/kbukum/routekit/craft"))
		if err != nil {
			return nil, err
		}
		opts = append(opts, craft.WithMetrics(metrics))
	}
	return opts, nil
}

// shutdownComponent adapts a provider's Shutdown to the component lifecycle.
type shutdownComponent struct {
	name     string
	shutdown func(context.Context) error
}

func provider(name string, shutdown func(context.Context) error) component.Component {
	return &shutdownComponent{name: name, shutdown: shutdown}
}

func (p *shutdownComponent) Name() string                   { return p.name }
func (p *shutdownComponent) Start(context.Context) error    { return nil }
func (p *shutdownComponent) Stop(ctx context.Context) error { return p.shutdown(ctx) }
func (p *shutdownComponent) Health(context.Context) component.Health {
	return component.Health{Name: p.name, Status: component.StatusHealthy}
}
