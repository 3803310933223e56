package middleware

import (
	"github.com/hyp3rd/timewatch"
)

// Logger describes a logging interface allowing to implement different external, or custom logger.
// Tested with logrus, and Uber's Zap (high-performance), but should work with any other logger that matches the interface.
type Logger interface {
	Printf(format string, v ...any)
}

// LoggingMiddleware is a recorder middleware that logs every measurement
// passing through before forwarding it.
type LoggingMiddleware struct {
	next   timewatch.Recorder
	logger Logger
}

// NewLoggingMiddleware returns a new LoggingMiddleware.
func NewLoggingMiddleware(next timewatch.Recorder, logger Logger) timewatch.Recorder {
	return &LoggingMiddleware{next: next, logger: logger}
}

// Record logs the measurement and forwards it.
func (mw LoggingMiddleware) Record(rec timewatch.Record) {
	mw.logger.Printf("recorded tag: %s elapsed: %s", rec.Tag, rec.Elapsed)

	mw.next.Record(rec)
}
