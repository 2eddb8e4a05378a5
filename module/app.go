package module

import (
	"context"
	"fmt"

	"github.com/kbukum/crudify/di"
	"github.com/kbukum/crudify/logger"
	"github.com/kbukum/crudify/observability"
	"github.com/kbukum/crudify/router"
	"github.com/kbukum/crudify/validation"
)

// Option configures an App.
type Option func(*options)

type options struct {
	log      *logger.Logger
	observer di.Observer
	metrics  *observability.Metrics
}

// WithLogger sets the logger for the app, its injectors and routers.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithObserver attaches obs to every injector the app creates.
func WithObserver(obs di.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithMetrics records request metrics for every module router.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// App is a built module graph. Every module is a value of a dedicated
// "modules" injector whose factories depend on the modules they import, so
// import cycles fail as circular dependencies and modules are disposed
// importers first.
type App struct {
	root     *Module
	modules  *di.Injector
	tokens   map[*Module]*di.Key[*Context]
	contexts map[*Module]*Context
	routers  []*router.Router
	opts     options
	log      *logger.Logger
}

// NewApp builds root and, depth-first, every module it imports.
func NewApp(root *Module, opts ...Option) (*App, error) {
	a := &App{
		root:     root,
		tokens:   make(map[*Module]*di.Key[*Context]),
		contexts: make(map[*Module]*Context),
	}
	for _, opt := range opts {
		opt(&a.opts)
	}
	a.log = a.opts.log
	if a.log == nil {
		a.log = logger.Get("module")
	}

	var order []*Module
	if err := a.collect(root, &order); err != nil {
		return nil, err
	}

	providers := make([]di.Provider, 0, len(order))
	for _, m := range order {
		providers = append(providers, a.provider(m))
	}
	modules, err := di.New(providers, a.injectorOptions("modules")...)
	if err != nil {
		return nil, err
	}
	a.modules = modules

	if _, err := di.Get(modules, a.tokens[root]); err != nil {
		if derr := modules.Dispose(context.Background()); derr != nil {
			a.log.Error("Module cleanup failed", logger.ErrorFields("dispose", derr))
		}
		return nil, err
	}
	a.log.Info("Modules initialized", map[string]interface{}{
		logger.FieldModule: root.Name,
		"modules":          len(order),
		"routers":          len(a.routers),
	})
	return a, nil
}

// collect assigns a token to every reachable module in depth-first order.
func (a *App) collect(m *Module, order *[]*Module) error {
	if m == nil {
		return fmt.Errorf("module: nil module in imports")
	}
	if _, seen := a.tokens[m]; seen {
		return nil
	}
	if err := validation.Validate(m); err != nil {
		return err
	}
	a.tokens[m] = di.NewKey[*Context](m.Name)
	*order = append(*order, m)
	for _, imp := range m.Imports {
		if err := a.collect(imp, order); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) provider(m *Module) di.Provider {
	deps := make([]di.Token, len(m.Imports))
	for i, imp := range m.Imports {
		deps[i] = a.tokens[imp]
	}
	return di.UseFactory(a.tokens[m], deps, func(args ...any) (any, error) {
		imports := make([]*Context, len(args))
		for i, arg := range args {
			imports[i] = arg.(*Context)
		}
		c, err := a.build(m, imports)
		if err != nil {
			return nil, err
		}
		a.contexts[m] = c
		return c, nil
	}, di.WithAutoDispose(true))
}

func (a *App) injectorOptions(name string) []di.Option {
	opts := []di.Option{di.WithName(name), di.WithLogger(a.log)}
	if a.opts.observer != nil {
		opts = append(opts, di.WithObserver(a.opts.observer))
	}
	return opts
}

// Get resolves token in the root module's private scope.
func (a *App) Get(token di.Token) (any, error) {
	return a.Injector().Get(token)
}

// Injector returns the root module's private scope.
func (a *App) Injector() *di.Injector {
	return a.contexts[a.root].private
}

// Context returns the built context of m.
func (a *App) Context(m *Module) (*Context, bool) {
	c, ok := a.contexts[m]
	return c, ok
}

// Routers lists the routers of modules with controllers, imported modules
// first.
func (a *App) Routers() []*router.Router {
	return append([]*router.Router(nil), a.routers...)
}

// Dispose disposes every module, importers before the modules they import.
func (a *App) Dispose(ctx context.Context) error {
	return a.modules.Dispose(ctx)
}
