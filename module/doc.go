// Package module assembles injectors from a graph of modules.
//
// A Module lists its providers, the modules it imports and the tokens it
// exports. NewApp builds every reachable module once, imported modules first:
// each gets a private injector holding its own providers plus proxies for
// the exports of its direct imports, and an exported injector that importers
// resolve through. Proxied values stay owned by the module that created them.
//
//	storage := &module.Module{
//		Name:      "storage",
//		Providers: []di.Provider{di.UseFactory(DB, nil, openDB, di.WithAutoDispose(true))},
//		Exports:   []di.Token{DB},
//	}
//	app, err := module.NewApp(&module.Module{Name: "app", Imports: []*module.Module{storage}})
//
// Modules with controllers get a router forked from their private injector.
// App.Dispose tears modules down importers first.
package module
