package craft

import (
	"time"

	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/logger"
	"github.com/kbukum/routekit/observability"
	"github.com/kbukum/routekit/validation"
)

const (
	defaultName            = "craft"
	defaultStopGracePeriod = 10 * time.Second
	defaultMaxInFlight     = 64
)

// Config configures an execution context.
type Config struct {
	// Name is the component name reported to the host.
	Name string `yaml:"name" mapstructure:"name" validate:"omitempty,max=64"`
	// StopGracePeriod bounds how long Stop waits for in-flight exchanges.
	StopGracePeriod time.Duration `yaml:"stop_grace_period" mapstructure:"stop_grace_period" validate:"gte=0"`
	// MaxInFlight bounds concurrently running exchanges across all routes.
	MaxInFlight int64 `yaml:"max_in_flight" mapstructure:"max_in_flight" validate:"gte=0,lte=65536"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Name:            defaultName,
		StopGracePeriod: defaultStopGracePeriod,
		MaxInFlight:     defaultMaxInFlight,
	}
}

// ApplyDefaults fills in zero-value fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = defaultName
	}
	if c.StopGracePeriod == 0 {
		c.StopGracePeriod = defaultStopGracePeriod
	}
	if c.MaxInFlight == 0 {
		c.MaxInFlight = defaultMaxInFlight
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return errors.Configuration("craft: invalid config").WithCause(err)
	}
	return nil
}

type options struct {
	cfg       Config
	log       *logger.Logger
	observers []observability.Observer
	tracer    *observability.Tracer
	metrics   *observability.Metrics
}

// Option configures a Context.
type Option func(*options)

// WithConfig sets the context configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger sets the logger used for lifecycle logs and the default
// log observer.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithObserver adds an event observer. May be given multiple times.
func WithObserver(obs observability.Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// WithTracer sets the span tracer. Defaults to the global provider.
func WithTracer(t *observability.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithMetrics sets the metric instruments. Nil disables metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}
