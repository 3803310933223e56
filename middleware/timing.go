// Package middleware contains recorder middlewares and the timing decorators
// used to instrument code paths: a function wrapper and a Fiber handler
// wrapper that submit completed stop watch measurements to a recorder, plus
// logging and OpenTelemetry recorder decorators.
package middleware

import (
	"context"

	"github.com/hyp3rd/timewatch"
)

// Timed runs fn inside a stop watch bound to the factory's recorder. The
// measurement is recorded under the given tag either way; on failure the
// error message travels with the record.
func Timed(ctx context.Context, factory *timewatch.Factory, tag string, fn func(context.Context) error) error {
	sw := factory.Start(tag)

	err := fn(ctx)
	if err != nil {
		sw.StopWithMessage(err.Error())

		return err
	}

	sw.Stop()

	return nil
}

// TimedValue is Timed for functions returning a value alongside the error.
func TimedValue[T any](ctx context.Context, factory *timewatch.Factory, tag string, fn func(context.Context) (T, error)) (T, error) {
	var value T

	err := Timed(ctx, factory, tag, func(ctx context.Context) error {
		var fnErr error

		value, fnErr = fn(ctx)

		return fnErr
	})

	return value, err
}
