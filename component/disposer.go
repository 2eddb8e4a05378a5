package component

import (
	"context"
	"sync/atomic"
)

// Disposer is anything released with a single Dispose call, such as an
// injector or a module application.
type Disposer interface {
	Dispose(ctx context.Context) error
}

// disposerComponent adapts a Disposer to the Component lifecycle.
type disposerComponent struct {
	name     string
	target   Disposer
	disposed atomic.Bool
}

// FromDisposer returns a Component whose Stop disposes d. Start is a no-op
// since d is already built when registered.
func FromDisposer(name string, d Disposer) Component {
	return &disposerComponent{name: name, target: d}
}

func (c *disposerComponent) Name() string { return c.name }

func (c *disposerComponent) Start(context.Context) error { return nil }

func (c *disposerComponent) Stop(ctx context.Context) error {
	if !c.disposed.CompareAndSwap(false, true) {
		return nil
	}
	return c.target.Dispose(ctx)
}

func (c *disposerComponent) Health(context.Context) Health {
	if c.disposed.Load() {
		return Health{Name: c.name, Status: StatusUnhealthy, Message: "disposed"}
	}
	return Health{Name: c.name, Status: StatusHealthy}
}
