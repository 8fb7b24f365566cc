package httpclient

import (
	"net/http"
	"time"

	"github.com/kbukum/routekit/resilience"
	"github.com/kbukum/routekit/security"
	"github.com/kbukum/routekit/validation"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "routekit/1"
)

// Config configures the HTTP client.
type Config struct {
	// Name identifies the client in logs and breaker callbacks.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is prepended to relative request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds a whole request including reading the body. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is sent unless a request sets its own.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// MaxIdleConnsPerHost tunes the pooled transport. Zero keeps the Go default.
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host" mapstructure:"max_idle_conns_per_host"`

	// CircuitBreaker enables fail-fast behavior. Nil disables it.
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`

	// TLS configures the pooled transport. Ignored when Transport is set.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Transport replaces the pooled transport, mostly for tests.
	Transport http.RoundTripper `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields. A negative timeout is left for
// Validate to reject.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Name == "" {
		c.Name = "http"
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.New().
		Positive("timeout", c.Timeout).
		NonNegative("max_idle_conns_per_host", c.MaxIdleConnsPerHost).
		URL("base_url", c.BaseURL).
		Err(); err != nil {
		return err
	}
	return c.TLS.Validate()
}

// DefaultCircuitBreakerConfig returns a breaker config that only counts
// retryable client errors (timeouts, connection failures, 5xx, 429).
func DefaultCircuitBreakerConfig(name string) *resilience.CircuitBreakerConfig {
	cfg := resilience.DefaultCircuitBreakerConfig(name)
	cfg.IsFailure = IsRetryable
	return &cfg
}
