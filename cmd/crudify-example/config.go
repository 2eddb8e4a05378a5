package main

import (
	"fmt"

	"github.com/kbukum/crudify/config"
	"github.com/kbukum/crudify/server"
	"github.com/kbukum/crudify/validation"
)

// Config is the example service configuration. PORT, ORIGIN, TRUST_PROXY and
// LOG_PREFIX override the file values.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Port       int       `yaml:"port" mapstructure:"port" json:"port" validate:"min=0,max=65535"`
	Origin     string    `yaml:"origin" mapstructure:"origin" json:"origin" validate:"required,url"`
	TrustProxy bool      `yaml:"trust_proxy" mapstructure:"trust_proxy" json:"trust_proxy"`
	Log        LogConfig `yaml:"log" mapstructure:"log" json:"log"`
}

// LogConfig configures the application logger prefix.
type LogConfig struct {
	Prefix string `yaml:"prefix" mapstructure:"prefix" json:"prefix"`
}

func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "crudify-example"
	}
	c.ServiceConfig.ApplyDefaults()
	if c.Port == 0 {
		c.Port = 4001
	}
	if c.Origin == "" {
		c.Origin = fmt.Sprintf("http://localhost:%d", c.Port)
	}
	if c.Log.Prefix == "" {
		c.Log.Prefix = "MyApp"
	}
}

func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return validation.Validate(c)
}

// GetServerConfig maps the flat settings onto the HTTP server section.
func (c *Config) GetServerConfig() *server.Config {
	return &server.Config{Port: c.Port, TrustProxy: c.TrustProxy}
}
