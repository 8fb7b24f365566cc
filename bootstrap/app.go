package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/routekit/component"
	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/logger"
)

// App is a host process with uniform lifecycle management. C is the typed
// host config.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	signals         []os.Signal
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp applies defaults to cfg, validates it and sets up logging.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Configuration("bootstrap: invalid config").WithCause(err)
	}
	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	log := o.logger
	if log == nil {
		logger.Init(&base.Logging)
		log = logger.GetGlobalLogger()
	}

	signals := o.signals
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	return &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(component.WithRegistryLogger(log)),
		Logger:          log,
		Summary:         NewSummary(base.Name, base.Version, o.summary),
		gracefulTimeout: o.gracefulTimeout,
		signals:         signals,
	}, nil
}

// RegisterComponent adds c to the registry. Components start in
// registration order and stop in reverse.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback for the configure phase, which runs after
// components have started.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck reports an error naming every component that is not healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		detail := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			detail += "(" + h.Message + ")"
		}
		unhealthy = append(unhealthy, detail)
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("components not healthy: %s", strings.Join(unhealthy, ", "))
	}
	return nil
}

// Run starts the host and blocks until a shutdown signal arrives or ctx is
// done, then shuts down.
func (a *App[C]) Run(ctx context.Context) error {
	return a.RunTask(ctx, func(ctx context.Context) error {
		a.Logger.Info("application ready, waiting for shutdown signal")
		<-ctx.Done()
		return nil
	})
}

// RunTask starts the host, runs task and shuts down when it returns. A
// shutdown signal cancels the task's context. The task error wins over a
// shutdown error.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}
	taskCtx, cancel := a.watchSignals(ctx)
	defer cancel()

	if err := task(taskCtx); err != nil {
		_ = a.stop()
		return err
	}
	return a.stop()
}

// watchSignals derives a context cancelled by the first shutdown signal.
func (a *App[C]) watchSignals(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, a.signals...)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			a.Logger.Info("received shutdown signal", logger.Fields("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func (a *App[C]) startup(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("bootstrap: start components: %w", err)
	}
	phases := []struct {
		name string
		run  func(context.Context) error
	}{
		{"start", func(ctx context.Context) error { return runHooks(ctx, "start", a.onStart) }},
		{"configure", a.configure},
		{"ready", a.ready},
	}
	for _, p := range phases {
		if err := p.run(ctx); err != nil {
			if stopErr := a.stop(); stopErr != nil {
				a.Logger.WithError(stopErr).Error("shutdown after failed start-up")
			}
			return fmt.Errorf("bootstrap: %w", err)
		}
	}

	a.Summary.SetStartupDuration(time.Since(began))
	a.Summary.Display(ctx, a.Components)
	return nil
}

func (a *App[C]) configure(ctx context.Context) error {
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return fmt.Errorf("configure: %w", err)
		}
	}
	return nil
}

// ready logs a failed readiness check without aborting; ready hooks decide.
func (a *App[C]) ready(ctx context.Context) error {
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.WithError(err).Warn("ready check reported issues")
	}
	return runHooks(ctx, "ready", a.onReady)
}

// Shutdown stops the host. Use it when driving the lifecycle yourself.
func (a *App[C]) Shutdown() error {
	return a.stop()
}

// stop runs the stop hooks, then stops components in reverse order, all
// within the graceful timeout.
func (a *App[C]) stop() error {
	log := a.Logger.WithFields(map[string]any{"timeout": a.gracefulTimeout.String()})
	log.Info("shutting down application")

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	err := errors.Join(
		runHooks(ctx, "stop", a.onStop),
		a.Components.StopAll(ctx),
	)
	if err != nil {
		log.WithError(err).Error("shutdown completed with errors")
		return err
	}
	log.Info("application shutdown complete")
	return nil
}
