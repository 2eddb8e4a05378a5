package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/crudify/di"
	apperrors "github.com/kbukum/crudify/errors"
	"github.com/kbukum/crudify/logger"
	"github.com/kbukum/crudify/observability"
	"github.com/kbukum/crudify/server"
	"github.com/kbukum/crudify/server/middleware"
)

// Option configures a Router.
type Option func(*options)

type options struct {
	name    string
	log     *logger.Logger
	metrics *observability.Metrics
}

// WithName names the router scope.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the router logger. Defaults to logger.Get("router").
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records request metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// binding is one mounted verb and path.
type binding struct {
	method     string
	path       string
	controller string
	handler    *di.Method
	status     int
}

// Router serves controller routes. Each request runs in a fork of the router
// injector that provides the request tokens; the fork is disposed once the
// response is written.
type Router struct {
	injector *di.Injector
	bindings []binding
	log      *logger.Logger
	metrics  *observability.Metrics
}

var _ server.Mounter = (*Router)(nil)

// New forks parent into a router scope holding providers, each controller
// class and one bound method per route handler. It fails on invalid routes
// and on two handlers for the same verb and path.
func New(parent *di.Injector, controllers []*Controller, providers []di.Provider, opts ...Option) (*Router, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get("router")
	}

	all := append([]di.Provider(nil), providers...)
	seen := make(map[string]binding)
	var bindings []binding

	for _, ctrl := range controllers {
		if ctrl == nil {
			return nil, apperrors.InvalidInput("controllers", "nil controller")
		}
		if err := ctrl.validate(); err != nil {
			return nil, err
		}
		all = append(all, ctrl.Class)

		methods := make(map[string]*di.Method)
		for _, route := range ctrl.Routes {
			m, ok := methods[route.Handler]
			if !ok {
				if route.Call == nil {
					return nil, apperrors.InvalidInput("call", fmt.Sprintf("%s.%s has no body", ctrl.name(), route.Handler))
				}
				m = di.InjectableMethod(ctrl.Class, route.Handler, route.Deps, route.Call)
				methods[route.Handler] = m
				all = append(all, di.UseMethod(m, m))
			}

			b := binding{
				method:     route.Method,
				path:       fullPath(ctrl.Path, route.Path),
				controller: ctrl.name(),
				handler:    m,
				status:     route.Status,
			}
			if b.status == 0 {
				b.status = http.StatusOK
			}
			key := b.method + " " + b.path
			if prev, dup := seen[key]; dup {
				return nil, apperrors.Conflict(fmt.Sprintf(
					"duplicate handler for %s (%s & %s)", key, prev.handler, m,
				))
			}
			seen[key] = b
			bindings = append(bindings, b)
		}
	}

	forkOpts := []di.Option{}
	if o.name != "" {
		forkOpts = append(forkOpts, di.WithName(o.name))
	}
	inj, err := parent.Fork(all, forkOpts...)
	if err != nil {
		return nil, err
	}

	o.log.Debug("Router created", map[string]interface{}{
		logger.FieldScope: inj.Name(),
		"routes":          len(bindings),
	})
	return &Router{injector: inj, bindings: bindings, log: o.log, metrics: o.metrics}, nil
}

// Injector returns the router scope.
func (r *Router) Injector() *di.Injector {
	return r.injector
}

// Routes lists the mounted "VERB /path" pairs in declaration order.
func (r *Router) Routes() []string {
	out := make([]string, len(r.bindings))
	for i, b := range r.bindings {
		out[i] = b.method + " " + b.path
	}
	return out
}

// Register mounts every route on routes. Gin rejects a path that collides
// with an already mounted one by panicking; that is reported as a CONFLICT.
func (r *Router) Register(routes gin.IRoutes) error {
	for _, b := range r.bindings {
		if err := mount(routes, b, r.serve(b)); err != nil {
			return err
		}
	}
	return nil
}

func mount(routes gin.IRoutes, b binding, h gin.HandlerFunc) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = apperrors.Conflict(fmt.Sprintf("mounting %s %s: %v", b.method, b.path, rec))
		}
	}()
	routes.Handle(b.method, b.path, h)
	return nil
}

// Dispose disposes the router scope.
func (r *Router) Dispose(ctx context.Context) error {
	return r.injector.Dispose(ctx)
}

func (r *Router) serve(b binding) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := middleware.GetRequestID(c)
		if id == "" {
			id = uuid.NewString()
			c.Set(middleware.RequestIDKey, id)
		}
		ctx, span := observability.StartRequest(c.Request.Context(), b.method, b.path, id, r.metrics)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(ctx, id))

		scope, result, err := r.handle(c, b, id)
		if errors.Is(err, context.DeadlineExceeded) {
			if _, ok := apperrors.AsAppError(err); !ok {
				err = apperrors.Timeout(b.method + " " + b.path).WithCause(err)
			}
		}
		status := b.status
		code := ""
		if err != nil {
			appErr := apperrors.Wrap(err)
			status, code = appErr.HTTPStatus, string(appErr.Code)
			if status >= http.StatusInternalServerError {
				r.log.WithContext(ctx).WithError(err).Error("Handler failed", logger.RouteFields(b.method, b.path))
			}
			server.RespondWithError(c, err)
		} else if !c.Writer.Written() {
			server.Respond(c, status, result)
			status = c.Writer.Status()
		}

		if scope != nil {
			if derr := r.release(c, scope); derr != nil {
				err = errors.Join(err, derr)
			}
		}
		span.End(ctx, status, code, err)
	}
}

// handle resolves and calls the bound handler in a fresh request scope. The
// scope is returned even on failure so it can be released once the response
// is written.
func (r *Router) handle(c *gin.Context, b binding, id string) (*di.Injector, any, error) {
	scope, err := r.injector.Fork(requestProviders(c, id))
	if errors.Is(err, di.ErrDisposed) {
		return nil, nil, apperrors.ServiceUnavailable(r.injector.Name()).WithCause(err)
	}
	if err != nil {
		return nil, nil, err
	}

	v, err := scope.Get(b.handler)
	if err != nil {
		return scope, nil, err
	}
	bound, ok := v.(di.Bound)
	if !ok {
		return scope, nil, apperrors.Internal(fmt.Errorf("%s resolved to %T, not a bound method", b.handler, v))
	}
	result, err := bound()
	return scope, result, err
}

// release disposes a request scope after its response was written. A
// failure can no longer change the response, so it is logged and recorded
// on the request span.
func (r *Router) release(c *gin.Context, scope *di.Injector) error {
	start := time.Now()
	err := scope.Dispose(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		r.log.WithContext(c.Request.Context()).Error("Request scope disposal failed", map[string]interface{}{
			logger.FieldScope: scope.Name(),
			logger.FieldError: err.Error(),
		})
	}
	r.log.Debug("Request scope disposed", logger.DurationFields("dispose", time.Since(start)))
	return err
}
