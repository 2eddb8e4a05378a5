package config

import (
	"fmt"

	"github.com/kbukum/crudify/logger"
	"github.com/kbukum/crudify/observability"
	"github.com/kbukum/crudify/validation"
)

// ServiceConfig contains the configuration fields every service needs.
// Applications extend it by embedding:
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Port int `mapstructure:"port"`
//	}
type ServiceConfig struct {
	Name          string               `yaml:"name" mapstructure:"name" json:"name" validate:"required"`
	Environment   string               `yaml:"environment" mapstructure:"environment" json:"environment" validate:"oneof=development staging production"`
	Version       string               `yaml:"version" mapstructure:"version" json:"version"`
	Debug         bool                 `yaml:"debug" mapstructure:"debug" json:"debug"`
	Logging       logger.Config        `yaml:"logging" mapstructure:"logging" json:"-"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability" json:"-"`
}

// GetServiceConfig returns the base ServiceConfig. When embedded, the method
// is promoted so the embedding struct satisfies bootstrap.Config.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values to the base configuration.
// Embedding structs that override it must call c.ServiceConfig.ApplyDefaults().
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Version == "" {
		c.Version = "0.0.0"
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate validates the base configuration fields.
// Embedding structs that override it must call c.ServiceConfig.Validate().
func (c *ServiceConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
