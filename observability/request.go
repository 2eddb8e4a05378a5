package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Request tracks the span and metrics of a single routed request.
type Request struct {
	Method    string
	Route     string
	RequestID string
	StartTime time.Time

	span    trace.Span
	metrics *Metrics
}

// StartRequest opens an http.request span and records the request start.
// If metrics is nil, metric recording is silently skipped.
func StartRequest(ctx context.Context, method, route, requestID string, metrics *Metrics) (context.Context, *Request) {
	ctx, span := StartSpan(ctx, SpanHTTPRequest, trace.WithSpanKind(trace.SpanKindServer))
	span.SetAttributes(
		attribute.String(AttrMethod, method),
		attribute.String(AttrRoute, route),
	)
	if requestID != "" {
		span.SetAttributes(attribute.String(AttrRequestID, requestID))
	}
	if metrics != nil {
		metrics.begin(ctx)
	}
	return ctx, &Request{
		Method:    method,
		Route:     route,
		RequestID: requestID,
		StartTime: time.Now(),
		span:      span,
		metrics:   metrics,
	}
}

// End records the outcome and ends the span. code is the error code of a
// failed request, empty on success.
func (r *Request) End(ctx context.Context, status int, code string, err error) {
	duration := time.Since(r.StartTime)

	if err != nil {
		r.span.RecordError(err)
		r.span.SetStatus(codes.Error, err.Error())
		r.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	r.span.SetAttributes(
		attribute.Int(AttrStatusCode, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	r.span.End()

	if r.metrics != nil {
		r.metrics.end(ctx, r.Method, r.Route, status, duration, code)
	}
}

// Duration returns the elapsed time since the request started.
func (r *Request) Duration() time.Duration {
	return time.Since(r.StartTime)
}
