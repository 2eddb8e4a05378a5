package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/crudify/logger"
)

// DefaultKillTimeout bounds how long a graceful shutdown may take once a
// signal was received.
const DefaultKillTimeout = 30 * time.Second

// ExitForced is the exit code of a forced termination. Graceful shutdown did
// not finish, so supervisors and orchestrators must see a failure rather
// than a clean stop.
const ExitForced = 1

// ErrShutdown is the cancellation cause of the context passed to main when a
// shutdown signal arrives.
var ErrShutdown = errors.New("process: shutdown signal received")

// Option configures Run.
type Option func(*options)

type options struct {
	signals     []os.Signal
	killTimeout time.Duration
	exit        func(code int)
	log         *logger.Logger
}

// WithSignals replaces the shutdown signals. Defaults to SIGINT and SIGTERM.
func WithSignals(sigs ...os.Signal) Option {
	return func(o *options) { o.signals = sigs }
}

// WithKillTimeout sets how long after the first signal the process is
// terminated if main has not returned. Zero disables the timer.
func WithKillTimeout(d time.Duration) Option {
	return func(o *options) { o.killTimeout = d }
}

// WithExit replaces os.Exit for forced termination.
func WithExit(fn func(code int)) Option {
	return func(o *options) { o.exit = fn }
}

// WithLogger sets the logger. Defaults to logger.Get("process").
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// Run calls main with a context that is canceled, with cause ErrShutdown, on
// the first shutdown signal. From then on a second signal, or the kill
// timeout elapsing, terminates the process with ExitForced. Run returns
// main's error.
func Run(ctx context.Context, main func(ctx context.Context) error, opts ...Option) error {
	o := options{
		signals:     []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		killTimeout: DefaultKillTimeout,
		exit:        os.Exit,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get("process")
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, o.signals...)
	defer signal.Stop(sigs)

	done := make(chan struct{})
	defer close(done)
	go watch(sigs, done, cancel, &o)

	return main(ctx)
}

func watch(sigs <-chan os.Signal, done <-chan struct{}, cancel context.CancelCauseFunc, o *options) {
	var sig os.Signal
	select {
	case sig = <-sigs:
	case <-done:
		return
	}

	cancel(fmt.Errorf("%w: %s", ErrShutdown, sig))
	o.log.Info("Shutdown initiated", map[string]interface{}{
		"signal":       sig.String(),
		"kill_timeout": o.killTimeout.String(),
	})

	var timeout <-chan time.Time
	if o.killTimeout > 0 {
		timer := time.NewTimer(o.killTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case sig = <-sigs:
		o.log.Warn("Terminating", map[string]interface{}{"cause": sig.String()})
	case <-timeout:
		o.log.Warn("Terminating", map[string]interface{}{"cause": "timeout"})
	case <-done:
		return
	}
	o.exit(ExitForced)
}
