package server

import (
	"fmt"
	"time"

	"github.com/kbukum/crudify/server/middleware"
	"github.com/kbukum/crudify/validation"
)

// Config holds HTTP server configuration.
type Config struct {
	Host            string                `yaml:"host" mapstructure:"host" json:"host"`
	Port            int                   `yaml:"port" mapstructure:"port" json:"port" validate:"min=0,max=65535"`
	ReadTimeout     int                   `yaml:"read_timeout" mapstructure:"read_timeout" json:"read_timeout" validate:"min=0"`             // seconds
	WriteTimeout    int                   `yaml:"write_timeout" mapstructure:"write_timeout" json:"write_timeout" validate:"min=0"`          // seconds
	IdleTimeout     int                   `yaml:"idle_timeout" mapstructure:"idle_timeout" json:"idle_timeout" validate:"min=0"`             // seconds
	ShutdownTimeout int                   `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" json:"shutdown_timeout" validate:"min=0"` // seconds
	TrustProxy      bool                  `yaml:"trust_proxy" mapstructure:"trust_proxy" json:"trust_proxy"`
	CORS            middleware.CORSConfig `yaml:"cors" mapstructure:"cors" json:"-"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
