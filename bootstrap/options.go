package bootstrap

import (
	"io"
	"os"
	"time"

	"github.com/kbukum/routekit/logger"
)

// Option configures an App. Options are not generic so they work with any
// config type.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout time.Duration
	summary         io.Writer
	signals         []os.Signal
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{gracefulTimeout: 15 * time.Second, summary: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the application logger. Without it the global logger is
// initialised from the config's logging block.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithGracefulTimeout bounds shutdown, including every component's Stop.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) { o.gracefulTimeout = d }
}

// WithSummaryWriter sets where the startup summary is printed. Nil
// disables it.
func WithSummaryWriter(w io.Writer) Option {
	return func(o *appOptions) { o.summary = w }
}

// WithSignals replaces the shutdown signals (SIGINT and SIGTERM by default).
func WithSignals(sigs ...os.Signal) Option {
	return func(o *appOptions) { o.signals = sigs }
}
