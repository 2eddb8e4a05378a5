// Package di provides a hierarchical dependency injection container.
//
// An Injector resolves tokens to values using a compiled provider list.
// Forks layer their own providers over a parent's; a value is cached at the
// highest scope that does not override it or anything it depends on, so
// forks share what they can and rebuild what they shadow. Values are
// released in reverse creation order when their owning scope is disposed.
//
// # Providers
//
//	var (
//	    Config = di.NewKey[*Config]("Config")
//	    Logger = di.NewKey[*Logger]("Logger")
//	)
//
//	root, err := di.New([]di.Provider{
//	    di.UseValue(Config, cfg),
//	    di.UseFactory(Logger, []di.Token{Config}, di.Func1(NewLogger), di.WithAutoDispose(true)),
//	})
//
// # Resolution
//
//	log, err := di.Get(root, Logger)
//
//	req, err := root.Fork([]di.Provider{di.UseValue(RequestID, id)})
//	defer req.Dispose(ctx)
//
// Every error is an *errors.AppError; use errors.Is with ErrNoFactory,
// ErrCircularDependency and the other sentinels to classify failures.
package di
