// Package config loads service configuration from a YAML file, an optional
// .env file and the process environment, in that order of precedence
// (later wins).
//
// # Usage
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Craft craft.Config `yaml:"craft" mapstructure:"craft"`
//	}
//
//	var cfg Config
//	err := config.LoadConfig("craft", &cfg)
//
// Environment variables map onto nested keys by splitting on underscores,
// so CRAFT_MAX_IN_FLIGHT sets craft.max_in_flight. WithEnvPrefix restricts
// binding to variables carrying a prefix, which is stripped first.
package config
