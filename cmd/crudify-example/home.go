package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/kbukum/crudify/di"
	"github.com/kbukum/crudify/router"
)

type home struct{}

var homeClass = di.Injectable("Home", nil, func([]any) (any, error) {
	return &home{}, nil
}, di.WithAutoDispose(false))

var homeController = &router.Controller{
	Name:  "Home",
	Path:  "/cats",
	Class: homeClass,
	Routes: []router.Route{
		router.Post("", "createCat", []di.Token{router.Method}, func(_ any, args []any) (any, error) {
			return fmt.Sprintf("%s Cat", args[0]), nil
		}),
		router.Get("/food", "home", []di.Token{router.Request, router.Query}, func(_ any, args []any) (any, error) {
			req, q := args[0].(*http.Request), args[1].(url.Values)
			return fmt.Sprintf("Home (req.url:%s searchParams:%s)", req.URL.RequestURI(), q.Encode()), nil
		}),
	},
}
