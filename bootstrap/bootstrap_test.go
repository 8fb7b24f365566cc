package bootstrap

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/kbukum/routekit/component"
	"github.com/kbukum/routekit/config"
	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/logger"
)

type testConfig struct {
	config.ServiceConfig `mapstructure:",squash"`
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	started  bool
	stopped  bool
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(context.Context) error {
	m.started = true
	return m.startErr
}
func (m *mockComponent) Stop(context.Context) error {
	m.stopped = true
	return m.stopErr
}
func (m *mockComponent) Health(context.Context) component.Health { return m.health }

type describedComponent struct {
	mockComponent
}

func (d *describedComponent) Describe() component.Description {
	return component.Description{Name: "Craft", Type: "craft", Details: "routes=1"}
}

func (d *describedComponent) Endpoints() []component.Endpoint {
	return []component.Endpoint{{Method: "GET", Path: "/health"}}
}

func newApp(t *testing.T, opts ...Option) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "craft", Version: "0.1.0"}}
	base := []Option{WithLogger(logger.NewNop()), WithSummaryWriter(nil), WithGracefulTimeout(time.Second)}
	app, err := NewApp(cfg, append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

func healthy(name string) *mockComponent {
	return &mockComponent{name: name, health: component.Health{Status: component.StatusHealthy}}
}

func TestNewApp(t *testing.T) {
	app := newApp(t)
	if app.Name != "craft" || app.Version != "0.1.0" {
		t.Errorf("unexpected identity %s %s", app.Name, app.Version)
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("expected defaults applied, got environment %q", app.Cfg.Environment)
	}
	if app.Components == nil || app.Logger == nil || app.Summary == nil {
		t.Error("expected registry, logger and summary")
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Environment: "qa"}}
	_, err := NewApp(cfg, WithLogger(logger.NewNop()))
	if !errors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRunTask(t *testing.T) {
	app := newApp(t)
	c := healthy("craft")
	if err := app.RegisterComponent(c); err != nil {
		t.Fatalf("register: %v", err)
	}

	var phases []string
	app.OnStart(func(context.Context) error { phases = append(phases, "start"); return nil })
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		if a != app {
			t.Error("configure callback got a different app")
		}
		phases = append(phases, "configure")
		return nil
	})
	app.OnReady(func(context.Context) error { phases = append(phases, "ready"); return nil })
	app.OnStop(func(context.Context) error {
		if c.stopped {
			t.Error("stop hooks must run before components stop")
		}
		phases = append(phases, "stop")
		return nil
	})

	err := app.RunTask(context.Background(), func(context.Context) error {
		phases = append(phases, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}
	if got := strings.Join(phases, ","); got != "start,configure,ready,task,stop" {
		t.Errorf("unexpected phase order %s", got)
	}
	if !c.started || !c.stopped {
		t.Errorf("component started=%v stopped=%v", c.started, c.stopped)
	}
}

func TestRunTask_ErrorPrecedence(t *testing.T) {
	taskErr := stderrors.New("task failed")
	stopErr := stderrors.New("stop failed")

	app := newApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "craft", stopErr: stopErr})
	if err := app.RunTask(context.Background(), func(context.Context) error { return taskErr }); !stderrors.Is(err, taskErr) {
		t.Errorf("expected task error, got %v", err)
	}

	app = newApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "craft", stopErr: stopErr})
	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); !stderrors.Is(err, stopErr) {
		t.Errorf("expected stop error, got %v", err)
	}
}

func TestStartupFailure(t *testing.T) {
	t.Run("component start", func(t *testing.T) {
		app := newApp(t)
		_ = app.RegisterComponent(&mockComponent{name: "server", startErr: stderrors.New("port in use")})
		ran := false
		err := app.RunTask(context.Background(), func(context.Context) error { ran = true; return nil })
		if err == nil || !strings.Contains(err.Error(), "port in use") {
			t.Fatalf("expected start error, got %v", err)
		}
		if ran {
			t.Error("task must not run after a failed start")
		}
	})

	t.Run("configure hook stops components", func(t *testing.T) {
		app := newApp(t)
		c := healthy("craft")
		_ = app.RegisterComponent(c)
		app.OnConfigure(func(context.Context, *App[*testConfig]) error { return stderrors.New("no routes") })
		err := app.RunTask(context.Background(), func(context.Context) error { return nil })
		if err == nil || !strings.Contains(err.Error(), "configure: no routes") {
			t.Fatalf("expected configure error, got %v", err)
		}
		if !c.stopped {
			t.Error("expected started components to be stopped")
		}
	})
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app := newApp(t)
	c := healthy("craft")
	_ = app.RegisterComponent(c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if !c.stopped {
		t.Error("expected component stopped")
	}
}

func TestRunTask_SignalCancelsTask(t *testing.T) {
	app := newApp(t, WithSignals(syscall.SIGUSR1))
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		_ = syscall.Kill(syscall.Getpid(), syscall.SIGUSR1)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(2 * time.Second):
			return stderrors.New("task context not cancelled")
		}
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestReadyCheck(t *testing.T) {
	app := newApp(t)
	_ = app.RegisterComponent(healthy("craft"))
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = app.RegisterComponent(&mockComponent{
		name:   "admin-server",
		health: component.Health{Status: component.StatusDegraded, Message: "not serving"},
	})
	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "admin-server=degraded(not serving)") {
		t.Errorf("unexpected ready error %v", err)
	}
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	app := newApp(t, WithSummaryWriter(&buf))
	_ = app.RegisterComponent(&describedComponent{mockComponent: *healthy("craft")})

	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("RunTask: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"craft v0.1.0 started", "Craft [craft] routes=1", "GET    /health", "Health: healthy"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestSummary_NoComponents(t *testing.T) {
	var buf bytes.Buffer
	s := NewSummary("craft", "dev", &buf)
	s.Display(context.Background(), component.NewRegistry(component.WithRegistryLogger(logger.NewNop())))
	if !strings.Contains(buf.String(), "no components registered") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
