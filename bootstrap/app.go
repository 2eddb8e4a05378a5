package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kbukum/crudify/component"
	"github.com/kbukum/crudify/logger"
	"github.com/kbukum/crudify/module"
	"github.com/kbukum/crudify/observability"
	"github.com/kbukum/crudify/process"
	"github.com/kbukum/crudify/server"
)

// App represents a module graph served over HTTP with uniform lifecycle
// management. The type parameter C is the config type, which must satisfy
// the Config interface. Any struct embedding config.ServiceConfig
// automatically satisfies Config.
//
// Example:
//
//	app, err := bootstrap.NewApp(&myConfig, rootModule)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*MyConfig]) error {
//	    // a.Cfg is the typed *MyConfig
//	    return nil
//	})
//	app.Run(context.Background())
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Modules    *module.App
	Server     *server.Server
	Components *component.Registry
	Logger     *logger.Logger
	Telemetry  *observability.Providers

	gracefulTimeout time.Duration
	killTimeout     time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error
	hooks           map[Phase][]Hook
}

// NewApp creates a new application instance from a typed config and the
// root module. It applies defaults, validates the config, initializes the
// logger and telemetry, builds the modules and mounts their routers.
func NewApp[C Config](cfg C, root *module.Module, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	srvCfg := serverConfig(cfg)
	if err := srvCfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()

	s := newSettings(opts)
	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		Logger:          s.logger,
		gracefulTimeout: s.gracefulTimeout,
		killTimeout:     s.killTimeout,
	}
	if app.Logger == nil {
		logger.Init(base.Logging, base.Name)
		app.Logger = logger.GetGlobalLogger()
	}

	telemetry, err := observability.Setup(context.Background(), base.Observability, base.Name, base.Version, base.Environment)
	if err != nil {
		return nil, fmt.Errorf("observability setup: %w", err)
	}
	app.Telemetry = telemetry

	if err := app.build(root, srvCfg); err != nil {
		if shutdownErr := telemetry.Shutdown(context.Background()); shutdownErr != nil {
			err = errors.Join(err, shutdownErr)
		}
		return nil, err
	}
	return app, nil
}

// build wires metrics, the module graph and the HTTP server.
func (a *App[C]) build(root *module.Module, srvCfg server.Config) error {
	meter := observability.Meter(a.Name)
	requestMetrics, err := observability.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("request metrics: %w", err)
	}
	injectorMetrics, err := observability.NewInjectorMetrics(meter)
	if err != nil {
		return fmt.Errorf("injector metrics: %w", err)
	}

	modules, err := module.NewApp(root,
		module.WithLogger(a.Logger.WithComponent("di")),
		module.WithObserver(injectorMetrics),
		module.WithMetrics(requestMetrics),
	)
	if err != nil {
		return fmt.Errorf("modules: %w", err)
	}
	a.Modules = modules

	srv := server.New(srvCfg, a.Logger.WithComponent("http"))
	srv.ApplyMiddleware()
	srv.RegisterDefaultEndpoints(a.Name, a.Version, a.Components.HealthAll)

	routers := modules.Routers()
	mounters := make([]server.Mounter, len(routers))
	for i, r := range routers {
		mounters[i] = r
	}
	if err := srv.Mount(mounters...); err != nil {
		return errors.Join(fmt.Errorf("mounting routes: %w", err), modules.Dispose(context.Background()))
	}
	a.Server = srv

	// Registered first so it stops last, after the server drained requests.
	if err := a.Components.Register(component.FromDisposer("modules", modules)); err != nil {
		return err
	}
	return a.Components.Register(server.NewComponent(srv))
}

// RegisterComponent adds a component to the application's registry.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback to run during the configure phase.
// Use this to set up business-layer dependencies after infrastructure is started.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	results := a.Components.HealthAll(ctx)
	var unhealthy []string
	for _, h := range results {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run executes the full application lifecycle for long-running services:
// components start, start hooks, configure callbacks, ready check, ready
// hooks, wait for a signal, stop hooks, then graceful shutdown.
func (a *App[C]) Run(ctx context.Context) error {
	return a.RunTask(ctx, func(ctx context.Context) error {
		a.Logger.Info("Application ready, waiting for shutdown signal")
		<-ctx.Done()
		a.Logger.Info("Shutdown requested", map[string]interface{}{
			"cause": context.Cause(ctx).Error(),
		})
		return nil
	})
}

// RunTask executes a finite task with the full bootstrap lifecycle. The
// task's context is canceled on SIGINT/SIGTERM; shutdown runs when the task
// returns. A second signal or the kill timeout terminates the process.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	return process.Run(ctx, func(ctx context.Context) error {
		if err := a.startup(ctx); err != nil {
			return errors.Join(err, a.stop())
		}
		taskErr := task(ctx)
		return errors.Join(taskErr, a.stop())
	}, process.WithKillTimeout(a.killTimeout), process.WithLogger(a.Logger))
}

// startup performs the initialization sequence shared by Run and RunTask.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	// Phase 1: Initialize: start all registered components
	if err := a.initialize(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if err := a.run(ctx, PhaseStart); err != nil {
		return err
	}

	// Phase 2: Configure: run business-layer setup callbacks
	if err := a.configure(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := a.run(ctx, PhaseReady); err != nil {
		return err
	}

	a.logRoutes()
	a.Logger.Info("Application started", logger.DurationFields("startup", time.Since(start)))
	return nil
}

// initialize starts all registered components (Phase 1).
func (a *App[C]) initialize(ctx context.Context) error {
	a.Logger.Info("Phase 1: Starting components")

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}

	a.Logger.Info("Phase 1: All components started", map[string]interface{}{
		"addr": a.Server.Addr(),
	})
	return nil
}

// configure runs registered configuration callbacks (Phase 2).
func (a *App[C]) configure(ctx context.Context) error {
	if len(a.onConfigure) == 0 {
		return nil
	}

	a.Logger.Info("Phase 2: Running configuration callbacks", map[string]interface{}{
		"count": len(a.onConfigure),
	})

	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}

	a.Logger.Info("Phase 2: Configuration complete")
	return nil
}

func (a *App[C]) logRoutes() {
	for _, r := range a.Server.Routes() {
		a.Logger.Debug("Route", logger.RouteFields(r.Method, r.Path))
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// stop gracefully shuts down all components within the graceful timeout,
// then flushes telemetry. Calling it again is a no-op for the components.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error

	if err := a.run(ctx, PhaseStop); err != nil {
		a.Logger.Error("Stop hook error", logger.ErrorFields("stop_hooks", err))
		errs = append(errs, err)
	}

	// Stop all components (reverse order): server first, then modules.
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", map[string]interface{}{
			"error": err.Error(),
		})
		errs = append(errs, err)
	}

	if err := a.Telemetry.Shutdown(ctx); err != nil {
		a.Logger.Error("Telemetry shutdown error", map[string]interface{}{
			"error": err.Error(),
		})
		errs = append(errs, err)
	}

	a.Logger.Info("Application shutdown complete")
	return errors.Join(errs...)
}
