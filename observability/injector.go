package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/crudify/di"
)

var _ di.Observer = (*InjectorMetrics)(nil)

// InjectorMetrics records instance lifecycle events of an injector tree.
// Pass it to di.New with di.WithObserver.
type InjectorMetrics struct {
	created        metric.Int64Counter
	disposed       metric.Int64Counter
	disposeErrors  metric.Int64Counter
	createDuration metric.Float64Histogram
}

// NewInjectorMetrics creates the injector instruments on meter.
func NewInjectorMetrics(meter metric.Meter) (*InjectorMetrics, error) {
	in := &instruments{meter: meter}
	m := &InjectorMetrics{
		created:        in.counter("di.instances.created", "Instances created by provider factories"),
		disposed:       in.counter("di.instances.disposed", "Instances released during injector disposal"),
		disposeErrors:  in.counter("di.dispose.errors", "Instances whose dispose step failed"),
		createDuration: in.seconds("di.create.duration", "Time spent in provider factories"),
	}
	if err := in.err(); err != nil {
		return nil, err
	}
	return m, nil
}

// InstanceCreated implements di.Observer.
func (m *InjectorMetrics) InstanceCreated(scope string, token di.Token, took time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("di.scope", scope),
		attribute.String("token", token.String()),
	)
	ctx := context.Background()
	m.created.Add(ctx, 1, attrs)
	m.createDuration.Record(ctx, took.Seconds(), attrs)
}

// InstanceDisposed implements di.Observer.
func (m *InjectorMetrics) InstanceDisposed(scope string, token di.Token, err error) {
	attrs := metric.WithAttributes(
		attribute.String("di.scope", scope),
		attribute.String("token", token.String()),
	)
	ctx := context.Background()
	m.disposed.Add(ctx, 1, attrs)
	if err != nil {
		m.disposeErrors.Add(ctx, 1, attrs)
	}
}
