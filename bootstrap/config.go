package bootstrap

import (
	"github.com/kbukum/crudify/config"
	"github.com/kbukum/crudify/server"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.ServiceConfig (value embedding) automatically
// satisfies this interface via promoted methods.
//
// Example:
//
//	type MyConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
//
//	func (c *MyConfig) GetServerConfig() *server.Config { return &c.Server }
//
//	app, err := bootstrap.NewApp[*MyConfig](&cfg, rootModule)
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}

// ServerConfigProvider is implemented by configs carrying an HTTP server
// section. Configs without one get a server with default settings.
type ServerConfigProvider interface {
	GetServerConfig() *server.Config
}

func serverConfig(cfg any) server.Config {
	var sc server.Config
	if p, ok := cfg.(ServerConfigProvider); ok && p.GetServerConfig() != nil {
		sc = *p.GetServerConfig()
	}
	sc.ApplyDefaults()
	return sc
}
