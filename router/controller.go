package router

import (
	"fmt"
	"path"

	"github.com/kbukum/crudify/di"
	"github.com/kbukum/crudify/validation"
)

// Route binds one HTTP verb and path to a controller method. Deps are
// resolved in the request scope and passed to Call with the controller
// instance. Routes sharing a Handler name on the same controller share one
// bound method; the first route's Deps and Call are used.
type Route struct {
	Method  string      `json:"method" validate:"required,httpmethod"`
	Path    string      `json:"path" validate:"routepath"`
	Handler string      `json:"handler" validate:"required"`
	Status  int         `json:"status" validate:"omitempty,min=100,max=599"`
	Deps    []di.Token  `json:"-"`
	Call    di.CallFunc `json:"-"`
}

// Controller groups routes under a path prefix. Class builds the controller
// instance; it is provided in the router scope.
type Controller struct {
	Name   string    `json:"name"`
	Path   string    `json:"path" validate:"routepath"`
	Class  *di.Class `json:"-" validate:"required"`
	Routes []Route   `json:"routes" validate:"dive"`
}

// Get declares a GET route.
func Get(p, handler string, deps []di.Token, call di.CallFunc) Route {
	return Route{Method: "GET", Path: p, Handler: handler, Deps: deps, Call: call}
}

// Post declares a POST route answering 201 Created.
func Post(p, handler string, deps []di.Token, call di.CallFunc) Route {
	return Route{Method: "POST", Path: p, Handler: handler, Status: 201, Deps: deps, Call: call}
}

// Put declares a PUT route.
func Put(p, handler string, deps []di.Token, call di.CallFunc) Route {
	return Route{Method: "PUT", Path: p, Handler: handler, Deps: deps, Call: call}
}

// Delete declares a DELETE route.
func Delete(p, handler string, deps []di.Token, call di.CallFunc) Route {
	return Route{Method: "DELETE", Path: p, Handler: handler, Deps: deps, Call: call}
}

func (c *Controller) name() string {
	if c.Name != "" {
		return c.Name
	}
	if c.Class != nil {
		return c.Class.String()
	}
	return "<controller>"
}

func (c *Controller) validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("controller %s: %w", c.name(), err)
	}
	return nil
}

// fullPath joins a controller prefix and a route path into a clean absolute
// path; empty parts collapse to "/".
func fullPath(prefix, sub string) string {
	return path.Join("/", prefix, sub)
}
