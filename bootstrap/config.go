package bootstrap

import "github.com/kbukum/routekit/config"

// Config is the constraint for host configuration types. Any struct that
// embeds config.ServiceConfig by value satisfies it through promoted
// methods.
//
//	type HostConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Craft craft.Config `yaml:"craft" mapstructure:"craft"`
//	}
//
//	app, err := bootstrap.NewApp(&hostCfg)
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
