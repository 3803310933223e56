package timewatch

import (
	"github.com/sirupsen/logrus"

	"github.com/hyp3rd/timewatch/internal/constants"
)

// Recorder consumes completed stop watch measurements. Implementations
// deliver them to a logging backend, a statistics pipeline, or both.
type Recorder interface {
	// Record consumes one completed measurement.
	Record(rec Record)
}

// RecorderFunc adapts a plain function to the Recorder interface.
type RecorderFunc func(rec Record)

// Record calls fn(rec).
func (fn RecorderFunc) Record(rec Record) {
	fn(rec)
}

// Factory creates stop watches bound to a fixed recorder. It is the binding
// point between timed code paths and the configured delivery pipeline.
type Factory struct {
	rec Recorder
}

// NewFactory creates a factory producing watches bound to the given recorder.
func NewFactory(rec Recorder) *Factory {
	return &Factory{rec: rec}
}

// Start creates a started watch under the given tag.
func (f *Factory) Start(tag string) *StopWatch {
	return NewStopWatch(f.rec, tag)
}

// Recorder returns the recorder the factory binds watches to.
func (f *Factory) Recorder() Recorder {
	return f.rec
}

// LogRecorder logs completed measurements through a named logrus entry at a
// configured level.
type LogRecorder struct {
	entry *logrus.Entry
	level logrus.Level
}

// resolveLevel maps a severity-level name to a logrus level, silently
// defaulting to Info when the name is not recognized.
func resolveLevel(levelName string) logrus.Level {
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		return logrus.InfoLevel
	}

	return level
}

// NewLogRecorder creates a recorder logging through the given logger under
// the given category and severity-level name. An empty logger name falls back
// to the default timing logger category, an unrecognized level name falls
// back to Info.
func NewLogRecorder(logger *logrus.Logger, loggerName, levelName string) *LogRecorder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if loggerName == "" {
		loggerName = constants.DefaultLoggerName
	}

	return &LogRecorder{
		entry: logger.WithField("logger", loggerName),
		level: resolveLevel(levelName),
	}
}

// Record logs the measurement in the timing log line format.
func (lr *LogRecorder) Record(rec Record) {
	lr.entry.Log(lr.level, rec.String())
}

// Level returns the resolved severity level.
func (lr *LogRecorder) Level() logrus.Level {
	return lr.level
}

// NewLogFactory creates a stop watch factory whose watches log through the
// given logger name and severity-level name. It mirrors the timing adapter
// contract: no branching beyond level-name resolution.
func NewLogFactory(loggerName, levelName string) *Factory {
	return NewFactory(NewLogRecorder(nil, loggerName, levelName))
}

// Middleware describes a recorder middleware.
type Middleware func(Recorder) Recorder

// ApplyMiddleware applies middlewares to a recorder.
func ApplyMiddleware(rec Recorder, mw ...Middleware) Recorder {
	// Apply each middleware in the chain
	for _, m := range mw {
		rec = m(rec)
	}
	// Return the decorated recorder
	return rec
}

// MultiRecorder fans a record out to several recorders, e.g. a log recorder
// plus a statistics pipeline.
type MultiRecorder struct {
	recorders []Recorder
}

// NewMultiRecorder creates a recorder delivering each record to every given
// recorder in order.
func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	return &MultiRecorder{recorders: recorders}
}

// Record delivers the measurement to every underlying recorder.
func (mr *MultiRecorder) Record(rec Record) {
	for _, r := range mr.recorders {
		r.Record(rec)
	}
}
