// Package bootstrap runs a module graph as an HTTP service.
//
// NewApp validates the typed configuration, initializes the logger and the
// OpenTelemetry providers, builds the module graph and mounts every module
// router on an HTTP server. Run starts the components, blocks until SIGINT,
// SIGTERM or context cancellation, then stops the server, disposes the
// modules and flushes telemetry.
//
// # Quick Start
//
//	app, err := bootstrap.NewApp(&cfg, rootModule)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app.OnReady(func(ctx context.Context) error {
//	    app.Logger.Info("ready")
//	    return nil
//	})
//	if err := app.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
package bootstrap
