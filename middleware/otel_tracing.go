package middleware

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hyp3rd/timewatch"
)

// OTelTracingMiddleware is a recorder middleware that replays each completed
// measurement as an OpenTelemetry span with explicit start and end
// timestamps, so timed code paths show up in traces without separate
// instrumentation.
type OTelTracingMiddleware struct {
	next   timewatch.Recorder
	tracer trace.Tracer
	// static attributes applied to all spans
	commonAttrs []attribute.KeyValue
}

// OTelTracingOption allows configuring the tracing middleware.
type OTelTracingOption func(*OTelTracingMiddleware)

// WithCommonAttributes sets attributes applied to all spans.
func WithCommonAttributes(attributes ...attribute.KeyValue) OTelTracingOption {
	return func(m *OTelTracingMiddleware) { m.commonAttrs = append(m.commonAttrs, attributes...) }
}

// NewOTelTracingMiddleware creates a tracing middleware.
func NewOTelTracingMiddleware(next timewatch.Recorder, tracer trace.Tracer, opts ...OTelTracingOption) timewatch.Recorder {
	mw := &OTelTracingMiddleware{next: next, tracer: tracer}
	for _, o := range opts {
		o(mw)
	}

	return mw
}

// Record replays the measurement as a span and forwards it.
func (mw *OTelTracingMiddleware) Record(rec timewatch.Record) {
	attrs := append([]attribute.KeyValue{
		attribute.String("tag", rec.Tag),
		attribute.Int64("elapsed.ms", rec.Elapsed.Milliseconds()),
	}, mw.commonAttrs...)

	_, span := mw.tracer.Start(context.Background(), rec.Tag,
		trace.WithTimestamp(rec.Start),
		trace.WithAttributes(attrs...),
	)

	if rec.Message != "" {
		span.SetAttributes(attribute.String("message", rec.Message))
	}

	span.End(trace.WithTimestamp(rec.Start.Add(rec.Elapsed)))

	mw.next.Record(rec)
}
