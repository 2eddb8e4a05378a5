package observability

import (
	"context"
	"errors"
)

// Providers holds the SDK providers created by Setup.
type Providers struct {
	shutdown []func(context.Context) error
}

// Setup installs the OTLP tracer and meter providers when cfg is enabled.
// A disabled config leaves the global no-op providers in place.
func Setup(ctx context.Context, cfg Config, service, version, environment string) (*Providers, error) {
	p := &Providers{}
	if !cfg.Enabled {
		return p, nil
	}

	tp, err := InitTracer(ctx, cfg.TracerConfig(service, version, environment))
	if err != nil {
		return nil, err
	}
	p.shutdown = append(p.shutdown, tp.Shutdown)

	mp, err := InitMeter(ctx, cfg.MeterConfig(service, version, environment))
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	p.shutdown = append(p.shutdown, mp.Shutdown)
	return p, nil
}

// Shutdown flushes and stops every provider, meter first.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(p.shutdown) - 1; i >= 0; i-- {
		if err := p.shutdown[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	p.shutdown = nil
	return errors.Join(errs...)
}
