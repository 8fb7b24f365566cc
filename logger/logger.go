package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Output formats accepted in Config.Format.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatPretty  = "pretty"
)

// Logger is a zerolog logger bound to one service, optionally scoped to a
// component, route or exchange.
type Logger struct {
	zl      zerolog.Logger
	service string
}

// Init applies defaults to cfg and installs the resulting logger globally.
func Init(cfg *Config) {
	cfg.ApplyDefaults()
	SetGlobalLogger(New(cfg, cfg.ServiceName))
}

// New creates a logger writing to cfg.Output.
func New(cfg *Config, service string) *Logger {
	return NewWriter(cfg.writer(), cfg, service)
}

// NewWriter creates a logger writing to w. Tests use it to capture lines.
func NewWriter(w io.Writer, cfg *Config, service string) *Logger {
	var zl zerolog.Logger
	switch strings.ToLower(cfg.Format) {
	case FormatConsole, FormatPretty:
		zl = zerolog.New(consoleWriter(w, cfg.NoColor))
	default:
		zl = zerolog.New(w)
	}

	ctx := zl.Level(cfg.level()).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	if service != "" {
		ctx = ctx.Str("service", service)
	}
	return &Logger{zl: ctx.Logger(), service: service}
}

// NewDefault creates a timestamped console logger at info level on stdout.
func NewDefault(service string) *Logger {
	return New(&Config{Level: "info", Format: FormatConsole, Timestamp: true}, service)
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// WithComponent scopes the logger to a host component.
func (l *Logger) WithComponent(name string) *Logger {
	return l.str(FieldComponent, name)
}

// WithRoute scopes the logger to a route.
func (l *Logger) WithRoute(routeID string) *Logger {
	return l.str(FieldRouteID, routeID)
}

// WithExchange scopes the logger to one exchange.
func (l *Logger) WithExchange(exchangeID string) *Logger {
	return l.str(FieldExchangeID, exchangeID)
}

// WithFields returns a logger carrying the given fields on every entry.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	return l.derive(func(c zerolog.Context) zerolog.Context { return c.Fields(fields) })
}

// WithError returns a logger carrying err.
func (l *Logger) WithError(err error) *Logger {
	return l.derive(func(c zerolog.Context) zerolog.Context { return c.Err(err) })
}

func (l *Logger) str(key, value string) *Logger {
	return l.derive(func(c zerolog.Context) zerolog.Context { return c.Str(key, value) })
}

func (l *Logger) derive(fn func(zerolog.Context) zerolog.Context) *Logger {
	return &Logger{zl: fn(l.zl.With()).Logger(), service: l.service}
}

// Zerolog exposes the underlying logger for callers that build events
// directly.
func (l *Logger) Zerolog() zerolog.Logger { return l.zl }

func (l *Logger) Debug(msg string, fields ...map[string]any) { write(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...map[string]any)  { write(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...map[string]any)  { write(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...map[string]any) { write(l.zl.Error(), msg, fields) }

// Fatal logs msg and exits the process.
func (l *Logger) Fatal(msg string, fields ...map[string]any) {
	write(l.zl.Fatal(), msg, fields)
}

func write(e *zerolog.Event, msg string, fields []map[string]any) {
	for _, f := range fields {
		e = e.Fields(f)
	}
	e.Msg(msg)
}

func (c *Config) writer() io.Writer {
	if strings.EqualFold(c.Output, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

func (c *Config) level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.Level))
	if err != nil || c.Level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
