package middleware

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/hyp3rd/timewatch"
)

// OTelMetricsMiddleware is a recorder middleware that emits OpenTelemetry
// metrics for every measurement passing through: a counter of completed
// watches and a duration histogram, both labeled with the tag.
type OTelMetricsMiddleware struct {
	next  timewatch.Recorder
	meter metric.Meter

	// instruments
	watches   metric.Int64Counter
	durations metric.Float64Histogram
}

// NewOTelMetricsMiddleware constructs a metrics middleware using the provided meter.
func NewOTelMetricsMiddleware(next timewatch.Recorder, meter metric.Meter) (timewatch.Recorder, error) {
	watches, err := meter.Int64Counter("timewatch.watches")
	if err != nil {
		return nil, fmt.Errorf("create counter: %w", err)
	}

	durations, err := meter.Float64Histogram("timewatch.duration.ms")
	if err != nil {
		return nil, fmt.Errorf("create histogram: %w", err)
	}

	return &OTelMetricsMiddleware{next: next, meter: meter, watches: watches, durations: durations}, nil
}

// Record emits the instruments and forwards the measurement.
func (mw *OTelMetricsMiddleware) Record(rec timewatch.Record) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("tag", rec.Tag))

	mw.watches.Add(ctx, 1, attrs)
	mw.durations.Record(ctx, float64(rec.Elapsed.Milliseconds()), attrs)

	mw.next.Record(rec)
}
