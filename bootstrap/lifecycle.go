package bootstrap

import (
	"context"
	"fmt"
)

// Hook is a lifecycle callback. Hooks of a phase run in registration order
// and the first failure ends the phase.
type Hook func(ctx context.Context) error

// Phase names the point of the lifecycle a hook runs at.
type Phase string

const (
	// PhaseStart runs once every component started, before configuration.
	PhaseStart Phase = "start"
	// PhaseReady runs after the ready check, right before the task.
	PhaseReady Phase = "ready"
	// PhaseStop runs on shutdown before components are stopped.
	PhaseStop Phase = "stop"
)

// OnStart registers hooks for PhaseStart.
func (a *App[C]) OnStart(hooks ...Hook) { a.on(PhaseStart, hooks) }

// OnReady registers hooks for PhaseReady.
func (a *App[C]) OnReady(hooks ...Hook) { a.on(PhaseReady, hooks) }

// OnStop registers hooks for PhaseStop. Use them to drain work that still
// needs the module graph.
func (a *App[C]) OnStop(hooks ...Hook) { a.on(PhaseStop, hooks) }

func (a *App[C]) on(phase Phase, hooks []Hook) {
	if a.hooks == nil {
		a.hooks = make(map[Phase][]Hook)
	}
	a.hooks[phase] = append(a.hooks[phase], hooks...)
}

// run executes the hooks of phase.
func (a *App[C]) run(ctx context.Context, phase Phase) error {
	hooks := a.hooks[phase]
	if len(hooks) > 0 {
		a.Logger.Debug("Running hooks", map[string]interface{}{
			"phase": string(phase),
			"count": len(hooks),
		})
	}
	return runHooks(ctx, phase, hooks)
}

func runHooks(ctx context.Context, phase Phase, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("%s hook %d: %w", phase, i, err)
		}
	}
	return nil
}
