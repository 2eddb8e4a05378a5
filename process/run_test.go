package process_test

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/kbukum/crudify/logger"
	"github.com/kbukum/crudify/process"
)

// exitRecorder stands in for os.Exit.
type exitRecorder struct {
	codes chan int
}

func newExitRecorder() *exitRecorder {
	return &exitRecorder{codes: make(chan int, 1)}
}

func (e *exitRecorder) exit(code int) { e.codes <- code }

func raise(t *testing.T) {
	t.Helper()
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunReturnsMainError(t *testing.T) {
	want := errors.New("boom")
	err := process.Run(context.Background(), func(context.Context) error { return want },
		process.WithLogger(logger.Nop()))
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestRunCancelsOnSignal(t *testing.T) {
	rec := newExitRecorder()
	err := process.Run(context.Background(), func(ctx context.Context) error {
		raise(t)
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-time.After(5 * time.Second):
			return errors.New("context not canceled")
		}
	}, process.WithSignals(syscall.SIGUSR1), process.WithExit(rec.exit), process.WithLogger(logger.Nop()))

	if !errors.Is(err, process.ErrShutdown) {
		t.Fatalf("expected ErrShutdown, got %v", err)
	}
	select {
	case code := <-rec.codes:
		t.Fatalf("expected no forced exit, got code %d", code)
	default:
	}
}

func TestRunSecondSignalExits(t *testing.T) {
	rec := newExitRecorder()
	var code int
	err := process.Run(context.Background(), func(ctx context.Context) error {
		raise(t)
		<-ctx.Done()
		raise(t)
		select {
		case code = <-rec.codes:
			return nil
		case <-time.After(5 * time.Second):
			return errors.New("no forced exit")
		}
	}, process.WithSignals(syscall.SIGUSR1), process.WithKillTimeout(0),
		process.WithExit(rec.exit), process.WithLogger(logger.Nop()))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != process.ExitForced {
		t.Errorf("expected exit code %d, got %d", process.ExitForced, code)
	}
}

func TestRunKillTimeout(t *testing.T) {
	rec := newExitRecorder()
	err := process.Run(context.Background(), func(ctx context.Context) error {
		raise(t)
		<-ctx.Done()
		select {
		case code := <-rec.codes:
			if code != process.ExitForced {
				return fmt.Errorf("expected exit code %d, got %d", process.ExitForced, code)
			}
			return nil
		case <-time.After(5 * time.Second):
			return errors.New("kill timeout did not fire")
		}
	}, process.WithSignals(syscall.SIGUSR1), process.WithKillTimeout(20*time.Millisecond),
		process.WithExit(rec.exit), process.WithLogger(logger.Nop()))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := process.Run(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, process.WithLogger(logger.Nop()))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
