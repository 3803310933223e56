// Package timewatch provides stop watch timing measurements and the recorder
// binding used to deliver completed measurements to logging and statistics
// pipelines.
package timewatch

import (
	"fmt"
	"time"
)

// Record is a completed stop watch measurement as delivered to recorders.
type Record struct {
	Start   time.Time     `json:"start"`
	Elapsed time.Duration `json:"elapsed"`
	Tag     string        `json:"tag"`
	Message string        `json:"message,omitempty"`
}

// String renders the record in the timing log line format:
// start[<epoch ms>] time[<ms>] tag[<tag>] message[...].
// Downstream parsers group records by the tag field.
func (r Record) String() string {
	if r.Message == "" {
		return fmt.Sprintf("start[%d] time[%d] tag[%s]", r.Start.UnixMilli(), r.Elapsed.Milliseconds(), r.Tag)
	}

	return fmt.Sprintf("start[%d] time[%d] tag[%s] message[%s]", r.Start.UnixMilli(), r.Elapsed.Milliseconds(), r.Tag, r.Message)
}

// StopWatch is a single timing measurement with start/stop boundaries.
// A watch is bound to a Recorder at construction; each Stop or Lap delivers
// the completed measurement to it. A StopWatch is not safe for concurrent
// use, each timed code path owns its watch.
type StopWatch struct {
	start   time.Time
	elapsed time.Duration
	tag     string
	message string
	running bool
	rec     Recorder
}

// NewStopWatch creates a started watch under the given tag, bound to the
// given recorder. A nil recorder produces a watch that only measures.
func NewStopWatch(rec Recorder, tag string) *StopWatch {
	return &StopWatch{
		start:   time.Now(),
		tag:     tag,
		running: true,
		rec:     rec,
	}
}

// Start restarts the watch under a new tag, discarding any running measurement.
func (sw *StopWatch) Start(tag string) {
	sw.start = time.Now()
	sw.tag = tag
	sw.message = ""
	sw.elapsed = 0
	sw.running = true
}

// Stop completes the measurement, delivers it to the recorder and returns the
// elapsed time. Stopping a stopped watch returns the previous elapsed time
// without recording again.
func (sw *StopWatch) Stop() time.Duration {
	if !sw.running {
		return sw.elapsed
	}

	sw.elapsed = time.Since(sw.start)
	sw.running = false

	if sw.rec != nil {
		sw.rec.Record(Record{
			Start:   sw.start,
			Elapsed: sw.elapsed,
			Tag:     sw.tag,
			Message: sw.message,
		})
	}

	return sw.elapsed
}

// StopWithMessage attaches a message to the record, then stops.
func (sw *StopWatch) StopWithMessage(message string) time.Duration {
	sw.message = message

	return sw.Stop()
}

// Lap stops the current measurement and immediately starts a new one under
// the given tag, returning the elapsed time of the completed lap.
func (sw *StopWatch) Lap(tag string) time.Duration {
	elapsed := sw.Stop()
	sw.Start(tag)

	return elapsed
}

// TagName returns the tag of the current or last measurement.
func (sw *StopWatch) TagName() string {
	return sw.tag
}

// SetTag replaces the tag without touching the running measurement, e.g. to
// qualify the outcome right before Stop.
func (sw *StopWatch) SetTag(tag string) {
	sw.tag = tag
}

// Message returns the message attached to the measurement, if any.
func (sw *StopWatch) Message() string {
	return sw.message
}

// SetMessage attaches a message delivered with the record on Stop.
func (sw *StopWatch) SetMessage(message string) {
	sw.message = message
}

// StartTime returns the instant the measurement started.
func (sw *StopWatch) StartTime() time.Time {
	return sw.start
}

// Elapsed returns the elapsed time: the running time so far for a running
// watch, the final measurement for a stopped one.
func (sw *StopWatch) Elapsed() time.Duration {
	if sw.running {
		return time.Since(sw.start)
	}

	return sw.elapsed
}
