package module

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kbukum/crudify/di"
	apperrors "github.com/kbukum/crudify/errors"
	"github.com/kbukum/crudify/logger"
	"github.com/kbukum/crudify/observability"
	"github.com/kbukum/crudify/router"
)

// Module declares a unit of wiring. Providers are private to the module
// unless their token is listed in Exports; a module sees the exports of its
// direct Imports. Controllers are served by a router forked from the private
// scope, with RequestProviders (of the module and of its direct imports)
// installed in that router scope.
type Module struct {
	Name             string               `json:"name" validate:"required"`
	Imports          []*Module            `json:"-"`
	Providers        []di.Provider        `json:"-"`
	Exports          []di.Token           `json:"-"`
	Controllers      []*router.Controller `json:"-"`
	RequestProviders []di.Provider        `json:"-"`
}

func (m *Module) String() string { return m.Name }

// Context is a built module: its private scope, the scope holding its
// exports, and its router when the module has controllers.
type Context struct {
	module   *Module
	private  *di.Injector
	exported *di.Injector
	router   *router.Router

	// gate serializes importers resolving through exported, which an
	// injector requires of concurrent callers.
	gate sync.Mutex
}

// Module returns the declaration the context was built from.
func (c *Context) Module() *Module { return c.module }

// Injector returns the module's private scope.
func (c *Context) Injector() *di.Injector { return c.private }

// Exported returns the scope importers resolve exports through.
func (c *Context) Exported() *di.Injector { return c.exported }

// Router returns the module router, or nil without controllers.
func (c *Context) Router() *router.Router { return c.router }

// Dispose releases the router, then the exported scope, then the private scope.
// Every step runs even when an earlier one fails.
func (c *Context) Dispose(ctx context.Context) error {
	return observability.TraceDispose(ctx, c.module.Name, func(ctx context.Context) error {
		var errs []error
		if c.router != nil {
			if err := c.router.Dispose(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		if c.exported != nil {
			if err := c.exported.Dispose(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		if err := c.private.Dispose(ctx); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})
}

// proxy provides token by resolving it in src. The value stays owned by src.
func proxy(token di.Token, src *di.Injector) di.Provider {
	return di.UseFactory(token, nil, func(...any) (any, error) {
		return src.Get(token)
	}, di.WithAutoDispose(false))
}

// importProxy provides token, exported by imp, to an importing module.
func importProxy(token di.Token, imp *Context) di.Provider {
	return di.UseFactory(token, nil, func(...any) (any, error) {
		imp.gate.Lock()
		defer imp.gate.Unlock()
		return imp.exported.Get(token)
	}, di.WithAutoDispose(false))
}

func (a *App) build(m *Module, imports []*Context) (*Context, error) {
	providers := append([]di.Provider(nil), m.Providers...)
	for _, imp := range imports {
		for _, token := range imp.module.Exports {
			providers = append(providers, importProxy(token, imp))
		}
	}

	private, err := di.New(providers, a.injectorOptions(m.Name)...)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", m.Name, err)
	}
	c := &Context{module: m, private: private}

	fail := func(err error) (*Context, error) {
		if derr := c.Dispose(context.Background()); derr != nil {
			err = errors.Join(err, derr)
		}
		return nil, fmt.Errorf("module %s: %w", m.Name, err)
	}

	exports := make([]di.Provider, 0, len(m.Exports))
	for _, token := range m.Exports {
		if token == nil || !private.Provides(token) {
			return fail(apperrors.InvalidProvider(fmt.Sprint(token), "exported but not provided by "+m.Name))
		}
		exports = append(exports, proxy(token, private))
	}
	c.exported, err = di.New(exports, a.injectorOptions(m.Name+".exports")...)
	if err != nil {
		return fail(err)
	}

	if len(m.Controllers) > 0 {
		requestProviders := append([]di.Provider(nil), m.RequestProviders...)
		for _, imp := range imports {
			requestProviders = append(requestProviders, imp.module.RequestProviders...)
		}
		c.router, err = router.New(private, m.Controllers, requestProviders,
			router.WithName(m.Name+".router"),
			router.WithLogger(a.log),
			router.WithMetrics(a.opts.metrics),
		)
		if err != nil {
			return fail(err)
		}
		a.routers = append(a.routers, c.router)
	}

	a.log.Debug("Module initialized", map[string]interface{}{
		logger.FieldModule: m.Name,
		"imports":          len(imports),
		"exports":          len(m.Exports),
		"controllers":      len(m.Controllers),
	})
	return c, nil
}
