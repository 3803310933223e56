package appender

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/timewatch"
	"github.com/hyp3rd/timewatch/internal/constants"
	"github.com/hyp3rd/timewatch/internal/sentinel"
	"github.com/hyp3rd/timewatch/stats"
)

// AsyncCoalescing accepts completed stop watch records on a buffered queue
// and coalesces them into grouped timing slices. A background worker seals
// the live slice every time slice and flushes it to the downstream appenders.
// It implements timewatch.Recorder so stop watches can deliver straight into
// the pipeline.
//
// The submit path never blocks: records beyond the queue capacity are
// discarded and counted.
type AsyncCoalescing struct {
	timeSlice   time.Duration
	queueSize   int
	collector   stats.ICollector
	downstreams []Appender

	queue     chan timewatch.Record
	discarded atomic.Uint64
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
	stopped   atomic.Bool
}

// Option configures an AsyncCoalescing appender.
type Option func(*AsyncCoalescing)

// WithTimeSlice sets the aggregation window length.
func WithTimeSlice(d time.Duration) Option {
	return func(a *AsyncCoalescing) { a.timeSlice = d }
}

// WithQueueSize sets the record queue capacity.
func WithQueueSize(n int) Option {
	return func(a *AsyncCoalescing) { a.queueSize = n }
}

// WithCollector sets the stats collector used for the live slice.
func WithCollector(c stats.ICollector) Option {
	return func(a *AsyncCoalescing) { a.collector = c }
}

// WithDownstream appends downstream appenders receiving each sealed slice.
func WithDownstream(appenders ...Appender) Option {
	return func(a *AsyncCoalescing) { a.downstreams = append(a.downstreams, appenders...) }
}

// NewAsyncCoalescing creates a coalescing appender with the given options.
// At least one downstream appender is required; the time slice defaults to
// 30 seconds.
func NewAsyncCoalescing(opts ...Option) (*AsyncCoalescing, error) {
	a := &AsyncCoalescing{
		timeSlice: constants.DefaultTimeSlice,
		queueSize: constants.DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(a)
	}

	if len(a.downstreams) == 0 {
		return nil, sentinel.ErrNilDownstream
	}

	if a.timeSlice <= 0 {
		return nil, sentinel.ErrInvalidTimeSlice
	}

	if a.collector == nil {
		collector, err := stats.NewCollector("grouped")
		if err != nil {
			return nil, err
		}

		a.collector = collector
	}

	a.queue = make(chan timewatch.Record, a.queueSize)
	a.stop = make(chan struct{})
	a.done = make(chan struct{})

	return a, nil
}

// Start launches the coalescing worker. The worker runs until Stop is called
// or the context is canceled.
func (a *AsyncCoalescing) Start(ctx context.Context) {
	go a.run(ctx)
}

// Record submits a completed measurement to the pipeline. Implements
// timewatch.Recorder. Records submitted after Stop, or while the queue is
// full, are discarded.
func (a *AsyncCoalescing) Record(rec timewatch.Record) {
	if a.stopped.Load() {
		a.discarded.Add(1)

		return
	}

	select {
	case a.queue <- rec:
	default:
		a.discarded.Add(1)
	}
}

// Discarded returns the number of records dropped by the submit path.
func (a *AsyncCoalescing) Discarded() uint64 {
	return a.discarded.Load()
}

// TimeSlice returns the configured aggregation window length.
func (a *AsyncCoalescing) TimeSlice() time.Duration {
	return a.timeSlice
}

// run drains the queue into the live slice and flushes it on every tick.
func (a *AsyncCoalescing) run(ctx context.Context) {
	defer close(a.done)

	ticker := time.NewTicker(a.timeSlice)
	defer ticker.Stop()

	for {
		select {
		case rec := <-a.queue:
			a.collector.Record(rec.Tag, rec.Elapsed)
		case <-ticker.C:
			a.flush(ctx)
		case <-a.stop:
			a.drainQueue()
			a.flush(context.WithoutCancel(ctx))

			return
		case <-ctx.Done():
			a.drainQueue()
			a.flush(context.WithoutCancel(ctx))

			return
		}
	}
}

// drainQueue consumes whatever is left on the queue without blocking.
func (a *AsyncCoalescing) drainQueue() {
	for {
		select {
		case rec := <-a.queue:
			a.collector.Record(rec.Tag, rec.Elapsed)
		default:
			return
		}
	}
}

// flush seals the live slice and hands it to every downstream appender.
// Empty slices are not propagated.
func (a *AsyncCoalescing) flush(ctx context.Context) {
	sealed := a.collector.Drain(time.Now())
	if len(sealed.TagNames()) == 0 {
		return
	}

	for _, downstream := range a.downstreams {
		// downstream errors must not abort the remaining appenders
		_ = downstream.Append(ctx, sealed)
	}
}

// Stop closes the pipeline: the submit path starts discarding, the worker
// drains the queue, flushes the final slice and stops the downstreams.
func (a *AsyncCoalescing) Stop(ctx context.Context) error {
	var err error

	a.stopOnce.Do(func() {
		// The queue stays open: Record may be sending concurrently and a send
		// on a closed channel panics. The worker is signaled instead.
		a.stopped.Store(true)
		close(a.stop)

		select {
		case <-a.done:
		case <-ctx.Done():
			err = ewrap.Wrap(sentinel.ErrTimeoutOrCanceled, "coalescing stop")

			return
		}

		group := ewrap.NewErrorGroup()

		for _, downstream := range a.downstreams {
			stopErr := downstream.Stop(ctx)
			if stopErr != nil {
				group.Add(stopErr)
			}
		}

		err = group.ErrorOrNil()
	})

	return err
}
