// Package component defines lifecycle-managed application parts and a
// registry that starts them in order and stops them in reverse.
//
// Anything with a Dispose(ctx) method, such as an injector, joins the
// lifecycle through FromDisposer:
//
//	reg := component.NewRegistry()
//	reg.Register(component.FromDisposer("modules", app))
//	reg.Register(server.NewComponent(srv))
package component
