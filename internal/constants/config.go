// Package constants defines default configuration values for the timewatch
// system. It provides standard settings for the statistics time slice, queue
// sizing, monitor naming, and the statistics log category.
package constants

import "time"

const (

	// DefaultTimeSlice is the default aggregation window for grouped timing
	// statistics. Completed stop watches accumulated during this window are
	// flushed downstream as a single grouped slice.
	DefaultTimeSlice = 30 * time.Second
	// DefaultQueueSize is the default capacity of the coalescing appender's
	// record queue. Submissions beyond this capacity are discarded rather
	// than blocking the timed code path.
	DefaultQueueSize = 1024
	// DefaultMonitorName is the object name under which the statistics
	// monitor registers when none is configured.
	DefaultMonitorName = "timewatch:type=StatisticsMonitor,name=Timewatch"
	// DefaultLoggerName is the logger category used for stop watch records
	// when none is configured.
	DefaultLoggerName = "timewatch.TimingLogger"
	// DefaultNotificationBuffer is the per-listener buffer for threshold
	// notifications. A listener that falls behind loses notifications
	// instead of stalling the append path.
	DefaultNotificationBuffer = 16
)
