package observability

import (
	"time"

	"github.com/kbukum/routekit/validation"
)

// Export defaults for a local collector.
const (
	DefaultEndpoint       = "localhost:4318"
	DefaultExportInterval = 15 * time.Second
)

// Resource identifies the process in exported telemetry.
type Resource struct {
	ServiceName    string `yaml:"service_name" mapstructure:"service_name"`
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	Environment    string `yaml:"environment" mapstructure:"environment"`
}

// TracerConfig configures OTLP/HTTP span export.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
	// SampleRate is the fraction of exchanges traced. Zero means 1.0;
	// disable tracing to sample nothing.
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MeterConfig configures OTLP/HTTP metric export.
type MeterConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// Config is the observability block of the host config.
type Config struct {
	Resource `yaml:",inline" mapstructure:",squash"`

	Tracing TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// ApplyDefaults fills the resource from the service identity and the
// exporters from the local collector defaults.
func (c *Config) ApplyDefaults(name, version, environment string) {
	if c.ServiceName == "" {
		c.ServiceName = name
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = version
	}
	if c.Environment == "" {
		c.Environment = environment
	}
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = DefaultEndpoint
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1.0
	}
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = DefaultEndpoint
	}
	if c.Metrics.Interval <= 0 {
		c.Metrics.Interval = DefaultExportInterval
	}
}

// Validate checks the settings of the enabled exporters.
func (c *Config) Validate() error {
	v := validation.New()
	if c.Tracing.Enabled {
		v.Custom(c.Tracing.Endpoint != "", "tracing.endpoint", "is required")
		v.Custom(c.Tracing.SampleRate > 0 && c.Tracing.SampleRate <= 1, "tracing.sample_rate", "must be in (0, 1]")
	}
	if c.Metrics.Enabled {
		v.Custom(c.Metrics.Endpoint != "", "metrics.endpoint", "is required")
		v.Custom(c.Metrics.Interval > 0, "metrics.interval", "must be positive")
	}
	return v.Err()
}
