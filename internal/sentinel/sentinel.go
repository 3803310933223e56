// Package sentinel provides standardized error definitions for the timewatch system.
// This package centralizes all error types used across the timewatch components,
// ensuring consistent error handling and messaging throughout the application.
//
// The errors defined here cover various scenarios including:
// - Invalid configuration parameters (tag names, range specifications, time slices)
// - Monitor registry failures (duplicate registrations, missing monitors)
// - Component initialization errors (nil clients, missing collectors/serializers)
// - Runtime operation errors (stopped appenders, timeouts, cancellations)
//
// All errors are created using the ewrap package to provide enhanced error
// wrapping and context capabilities.
package sentinel

import (
	"github.com/hyp3rd/ewrap"
)

var (
	// ErrNoTagNames is returned when an appender is started without any tag names to expose.
	ErrNoTagNames = ewrap.New("no tag names to expose")

	// ErrMalformedRange is returned when an acceptable-range specification does not match
	// the tagStatName(<value), tagStatName(>value) or tagStatName(min-max) grammar.
	ErrMalformedRange = ewrap.New("malformed acceptable range specification")

	// ErrMonitorRegistered is returned when a monitor name is already taken in the registry.
	ErrMonitorRegistered = ewrap.New("monitor already registered")

	// ErrMonitorNotFound is returned when a monitor name is not present in the registry.
	ErrMonitorNotFound = ewrap.New("monitor not found")

	// ErrParamCannotBeEmpty is returned when a parameter cannot be empty.
	ErrParamCannotBeEmpty = ewrap.New("param cannot be empty")

	// ErrCollectorNotFound is returned when a stats collector is not found.
	ErrCollectorNotFound = ewrap.New("stats collector not found")

	// ErrSerializerNotFound is returned when a serializer is not found.
	ErrSerializerNotFound = ewrap.New("serializer not found")

	// ErrNilClient is returned when a nil client is passed to an appender.
	ErrNilClient = ewrap.New("nil client")

	// ErrNilDownstream is returned when a coalescing appender is built without downstream appenders.
	ErrNilDownstream = ewrap.New("no downstream appenders")

	// ErrInvalidTimeSlice is returned when a non-positive time slice is configured.
	ErrInvalidTimeSlice = ewrap.New("time slice must be positive")

	// ErrTimeoutOrCanceled is returned when a timeout or cancellation occurs.
	ErrTimeoutOrCanceled = ewrap.New("the operation timed out or was canceled")

	// ErrMgmtHTTPShutdownTimeout is returned when the management HTTP server fails to shutdown before context deadline.
	ErrMgmtHTTPShutdownTimeout = ewrap.New("management http shutdown timeout")
)
