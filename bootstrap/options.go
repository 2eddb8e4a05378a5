package bootstrap

import (
	"time"

	"github.com/kbukum/crudify/logger"
	"github.com/kbukum/crudify/process"
)

// DefaultGracefulTimeout bounds stop hooks, component shutdown and the
// telemetry flush together.
const DefaultGracefulTimeout = 15 * time.Second

// Option configures an App. Options do not depend on the config type.
type Option func(*settings)

type settings struct {
	logger          *logger.Logger
	gracefulTimeout time.Duration
	killTimeout     time.Duration
}

func newSettings(opts []Option) settings {
	s := settings{
		gracefulTimeout: DefaultGracefulTimeout,
		killTimeout:     process.DefaultKillTimeout,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLogger replaces the logger otherwise initialized from the Logging
// section of the config.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithGracefulTimeout sets how long shutdown may take.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *settings) { s.gracefulTimeout = d }
}

// WithKillTimeout sets how long after a shutdown signal the process is
// terminated if shutdown has not finished. Zero disables forced termination.
func WithKillTimeout(d time.Duration) Option {
	return func(s *settings) { s.killTimeout = d }
}
