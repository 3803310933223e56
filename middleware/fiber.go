package middleware

import (
	fiber "github.com/gofiber/fiber/v3"

	"github.com/hyp3rd/timewatch"
)

// NewFiberTiming returns a Fiber handler middleware timing every request into
// the given recorder. The tag is "<METHOD> <path>" so each route aggregates
// under its own tag.
func NewFiberTiming(rec timewatch.Recorder) fiber.Handler {
	return func(fiberCtx fiber.Ctx) error {
		sw := timewatch.NewStopWatch(rec, fiberCtx.Method()+" "+fiberCtx.Path())

		err := fiberCtx.Next()
		if err != nil {
			sw.StopWithMessage(err.Error())

			return err
		}

		sw.Stop()

		return nil
	}
}
