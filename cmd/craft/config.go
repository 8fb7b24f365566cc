package main

import (
	"fmt"

	"github.com/kbukum/routekit/config"
	"github.com/kbukum/routekit/craft"
	"github.com/kbukum/routekit/httpclient"
	"github.com/kbukum/routekit/observability"
	"github.com/kbukum/routekit/routes"
	"github.com/kbukum/routekit/server"
	"github.com/kbukum/routekit/validation"
)

const (
	modeTask    = "task"
	modeService = "service"
)

// Config is the craft host configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// Mode is "task" to exit once every route is done, or "service" to run
	// until signalled.
	Mode string `yaml:"mode" mapstructure:"mode"`

	Craft         craft.Config         `yaml:"craft" mapstructure:"craft"`
	HTTP          httpclient.Config    `yaml:"http" mapstructure:"http"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Routes        routes.Config        `yaml:"routes" mapstructure:"routes"`
}

// ApplyDefaults fills every block.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Mode == "" {
		c.Mode = modeTask
	}
	c.Craft.ApplyDefaults()
	c.HTTP.ApplyDefaults()
	c.Observability.ApplyDefaults(c.Name, c.Version, c.Environment)
	c.Server.ApplyDefaults()
	c.Routes.ApplyDefaults()
}

// Validate checks every block.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.New().OneOf("mode", c.Mode, []string{modeTask, modeService}).Err(); err != nil {
		return err
	}
	checks := []struct {
		name string
		fn   func() error
	}{
		{"craft", c.Craft.Validate},
		{"http", c.HTTP.Validate},
		{"observability", c.Observability.Validate},
		{"server", c.Server.Validate},
		{"routes", c.Routes.Validate},
	}
	for _, chk := range checks {
		if err := chk.fn(); err != nil {
			return fmt.Errorf("%s: %w", chk.name, err)
		}
	}
	return nil
}
