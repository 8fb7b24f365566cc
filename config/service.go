package config

import (
	"fmt"

	"github.com/kbukum/routekit/logger"
	"github.com/kbukum/routekit/validation"
	"github.com/kbukum/routekit/version"
)

// Environments accepted by ServiceConfig.
var Environments = []string{"development", "staging", "production"}

// ServiceConfig holds the fields every routekit host needs. Embed it with
// mapstructure:",squash" to keep the keys at the top level.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig returns c. Promoted through embedding, it lets bootstrap
// reach the service fields of any host config.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults fills in the environment and propagates the service name
// into logging.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Version == "" {
		c.Version = version.Get().Short()
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the service fields and the logging block.
func (c *ServiceConfig) Validate() error {
	if err := validation.New().
		Required("name", c.Name).
		Required("environment", c.Environment).
		OneOf("environment", c.Environment, Environments).
		Err(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
