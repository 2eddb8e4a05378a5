package component

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	apperrors "github.com/kbukum/crudify/errors"
	"github.com/kbukum/crudify/logger"
)

// DefaultStopTimeout bounds each component's Stop call.
const DefaultStopTimeout = 10 * time.Second

type entry struct {
	Component
	running bool
}

// Registry starts components in registration order and stops the running
// ones in reverse order.
type Registry struct {
	mu          sync.Mutex
	entries     []*entry
	log         *logger.Logger
	stopTimeout time.Duration
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithStopTimeout overrides DefaultStopTimeout.
func WithStopTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) { r.stopTimeout = d }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{log: logger.Get("component"), stopTimeout: DefaultStopTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) find(name string) int {
	return slices.IndexFunc(r.entries, func(e *entry) bool { return e.Name() == name })
}

// Register appends c. Names are unique; a second registration under the
// same name is a CONFLICT.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.find(c.Name()) >= 0 {
		return apperrors.Conflict(fmt.Sprintf("component %s already registered", c.Name()))
	}
	r.entries = append(r.entries, &entry{Component: c})
	r.log.Debug("Component registered", map[string]interface{}{logger.FieldComponent: c.Name()})
	return nil
}

// Get returns the component registered under name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.find(name); i >= 0 {
		return r.entries[i].Component
	}
	return nil
}

// StartAll starts the components that are not running yet. The first failure
// ends the pass; what already started stays running until StopAll.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.running {
			continue
		}
		start := time.Now()
		if err := e.Start(ctx); err != nil {
			r.log.Error("Component start failed", logger.ErrorFields("start "+e.Name(), err))
			return fmt.Errorf("failed to start %s: %w", e.Name(), err)
		}
		e.running = true
		r.log.Debug("Component started", logger.DurationFields("start "+e.Name(), time.Since(start)))
	}
	return nil
}

// StopAll stops every running component, last registered first, each within
// the stop timeout. Failures do not stop the pass and are joined.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, e := range slices.Backward(r.entries) {
		if !e.running {
			continue
		}
		e.running = false
		if err := r.stop(ctx, e); err != nil {
			r.log.Error("Component stop failed", logger.ErrorFields("stop "+e.Name(), err))
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", e.Name(), err))
			continue
		}
		r.log.Info("Component stopped", map[string]interface{}{logger.FieldComponent: e.Name()})
	}
	return errors.Join(errs...)
}

func (r *Registry) stop(ctx context.Context, e *entry) error {
	ctx, cancel := context.WithTimeout(ctx, r.stopTimeout)
	defer cancel()
	return e.Stop(ctx)
}

// HealthAll collects the health of every component in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.Lock()
	entries := slices.Clone(r.entries)
	r.mu.Unlock()

	reports := make([]Health, len(entries))
	for i, e := range entries {
		reports[i] = e.Health(ctx)
	}
	return reports
}
