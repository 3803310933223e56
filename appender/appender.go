// Package appender provides the delivery pipeline for grouped timing
// statistics: an asynchronous coalescing stage that aggregates completed stop
// watch records into time slices, and downstream appenders that log, publish
// or persist each sealed slice.
package appender

import (
	"context"

	"github.com/hyp3rd/timewatch/stats"
)

// Appender consumes sealed grouped timing slices.
type Appender interface {
	// Append consumes one sealed slice.
	Append(ctx context.Context, slice *stats.Grouped) error
	// Stop releases the appender's resources. Calling Append after Stop is
	// an error.
	Stop(ctx context.Context) error
}

// AppenderFunc adapts a plain function to the Appender interface, with a
// no-op Stop.
type AppenderFunc func(ctx context.Context, slice *stats.Grouped) error

// Append calls fn(ctx, slice).
func (fn AppenderFunc) Append(ctx context.Context, slice *stats.Grouped) error {
	return fn(ctx, slice)
}

// Stop is a no-op.
func (AppenderFunc) Stop(_ context.Context) error {
	return nil
}
