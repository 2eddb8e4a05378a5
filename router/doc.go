// Package router mounts controller methods on a gin engine and runs each
// request in its own injector scope.
//
// A Router is a fork of a parent injector that holds the controller classes,
// any extra providers, and one bound method per route handler. Every request
// forks the router scope again with the request tokens (Request, Writer,
// Context, Method, Params, Query, RequestID), resolves the handler there,
// writes the result and disposes the request scope. Providers that depend on
// a request token are therefore created and released once per request.
//
//	users := &router.Controller{
//		Path:  "/users",
//		Class: usersController,
//		Routes: []router.Route{
//			router.Get("/:id", "get", []di.Token{router.Params}, getUser),
//		},
//	}
//	r, err := router.New(private, []*router.Controller{users}, nil)
//	if err != nil {
//		return err
//	}
//	srv.Mount(r)
//
// Handler results are written by server.Respond; errors go through
// server.RespondWithError and carry their AppError status.
package router
