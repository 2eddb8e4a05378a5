package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/crudify/logger"
)

// MeterConfig holds the settings of the OTLP metric pipeline. A zero
// Interval keeps the SDK export interval.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	Insecure       bool
	Interval       time.Duration
}

// InitMeter installs a periodic OTLP meter provider as the global provider.
// Shut the provider down on exit.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("Meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// instruments creates instruments on a meter and keeps every creation error.
type instruments struct {
	meter metric.Meter
	errs  []error
}

func (in *instruments) check(name string, err error) {
	if err != nil {
		in.errs = append(in.errs, fmt.Errorf("creating %s: %w", name, err))
	}
}

func (in *instruments) counter(name, desc string) metric.Int64Counter {
	c, err := in.meter.Int64Counter(name, metric.WithDescription(desc))
	in.check(name, err)
	return c
}

func (in *instruments) gauge(name, desc string) metric.Int64UpDownCounter {
	g, err := in.meter.Int64UpDownCounter(name, metric.WithDescription(desc))
	in.check(name, err)
	return g
}

func (in *instruments) seconds(name, desc string) metric.Float64Histogram {
	h, err := in.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	in.check(name, err)
	return h
}

func (in *instruments) err() error { return errors.Join(in.errs...) }

// Metrics holds the request instruments recorded by the router.
type Metrics struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
	failed   metric.Int64Counter
}

// NewMetrics creates the request instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	in := &instruments{meter: meter}
	m := &Metrics{
		total:    in.counter("http.requests.total", "Requests served by route and status"),
		duration: in.seconds("http.request.duration", "Time from routing to response"),
		active:   in.gauge("http.requests.active", "Requests in flight"),
		failed:   in.counter("http.errors.total", "Failed requests by error code"),
	}
	if err := in.err(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) begin(ctx context.Context) {
	m.active.Add(ctx, 1)
}

// end records a finished request. code is empty for a successful one.
func (m *Metrics) end(ctx context.Context, method, route string, status int, took time.Duration, code string) {
	m.active.Add(ctx, -1)
	endpoint := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("route", route),
	}
	m.total.Add(ctx, 1, metric.WithAttributes(append(endpoint, attribute.Int("status", status))...))
	m.duration.Record(ctx, took.Seconds(), metric.WithAttributes(endpoint...))
	if code != "" {
		m.failed.Add(ctx, 1, metric.WithAttributes(
			attribute.String("code", code),
			attribute.String("route", route),
		))
	}
}
