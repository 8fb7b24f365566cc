package routes

import (
	"fmt"

	"github.com/kbukum/routekit/httpclient"
	"github.com/kbukum/routekit/logger"
	"github.com/kbukum/routekit/route"
	"github.com/kbukum/routekit/validation"
)

const (
	defaultBaseURL = "https://jsonplaceholder.typicode.com"
	defaultUserID  = 1
)

// Config selects and parameterises the shipped routes.
type Config struct {
	HelloWorld HelloWorldConfig `yaml:"hello_world" mapstructure:"hello_world"`
}

// HelloWorldConfig configures the hello-world route.
type HelloWorldConfig struct {
	Disabled bool   `yaml:"disabled" mapstructure:"disabled"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,http_url"`
	// UserID is the user to greet. Nil means the default user, so 0 stays
	// a valid id.
	UserID *int `yaml:"user_id" mapstructure:"user_id" validate:"omitempty,gte=0"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.HelloWorld.BaseURL == "" {
		c.HelloWorld.BaseURL = defaultBaseURL
	}
}

// Validate checks the route settings.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

type options struct {
	baseURL string
	userID  int
	client  *httpclient.Client
	log     *logger.Logger
	sink    route.Sink
}

// Option configures a route constructor.
type Option func(*options)

func resolveOptions(opts []Option) *options {
	o := &options{baseURL: defaultBaseURL, userID: defaultUserID}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithBaseURL sets the user API base URL.
func WithBaseURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.baseURL = u
		}
	}
}

// WithUserID sets the user the source asks for. Negative ids are ignored.
func WithUserID(id int) Option {
	return func(o *options) {
		if id >= 0 {
			o.userID = id
		}
	}
}

// WithClient sets the HTTP client used by fetch stages. Without it the
// shared fetch client is used.
func WithClient(c *httpclient.Client) Option {
	return func(o *options) { o.client = c }
}

// WithLogger sets the logger for log sinks.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithSink replaces the terminal sink.
func WithSink(s route.Sink) Option {
	return func(o *options) { o.sink = s }
}

// All builds every enabled route. opts apply to each route after the
// values taken from cfg.
func All(cfg Config, opts ...Option) ([]*route.Route, error) {
	cfg.ApplyDefaults()

	var out []*route.Route
	if !cfg.HelloWorld.Disabled {
		hw := []Option{WithBaseURL(cfg.HelloWorld.BaseURL)}
		if id := cfg.HelloWorld.UserID; id != nil {
			hw = append(hw, WithUserID(*id))
		}
		hw = append(hw, opts...)
		r, err := HelloWorld(hw...)
		if err != nil {
			return nil, fmt.Errorf("routes: %s: %w", HelloWorldID, err)
		}
		out = append(out, r)
	}
	return out, nil
}
