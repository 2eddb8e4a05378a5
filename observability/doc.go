// Package observability provides OpenTelemetry tracing and metrics for
// injectors and routed requests.
//
// Setup:
//
//	providers, err := observability.Setup(ctx, cfg.Observability, "my-service", "1.0.0", "dev")
//	defer providers.Shutdown(ctx)
//
// Injector metrics:
//
//	m, err := observability.NewInjectorMetrics(observability.Meter("my-service"))
//	inj, err := di.New(providers, di.WithObserver(m))
//
// Request spans:
//
//	ctx, req := observability.StartRequest(ctx, "GET", "/users/:id", id, metrics)
//	defer req.End(ctx, status, "", err)
package observability
