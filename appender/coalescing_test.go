package appender

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/longbridgeapp/assert"

	"github.com/hyp3rd/timewatch"
	"github.com/hyp3rd/timewatch/internal/sentinel"
	"github.com/hyp3rd/timewatch/stats"
)

// captureAppender records every sealed slice it receives.
type captureAppender struct {
	mu      sync.Mutex
	slices  []*stats.Grouped
	stopped bool
}

func (c *captureAppender) Append(_ context.Context, slice *stats.Grouped) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.slices = append(c.slices, slice)

	return nil
}

func (c *captureAppender) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true

	return nil
}

func (c *captureAppender) sealedSlices() []*stats.Grouped {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]*stats.Grouped(nil), c.slices...)
}

func record(tag string, elapsed time.Duration) timewatch.Record {
	return timewatch.Record{
		Start:   time.Now(),
		Elapsed: elapsed,
		Tag:     tag,
	}
}

func TestAsyncCoalescing_RequiresDownstream(t *testing.T) {
	_, err := NewAsyncCoalescing()
	assert.True(t, errors.Is(err, sentinel.ErrNilDownstream))
}

func TestAsyncCoalescing_RequiresPositiveTimeSlice(t *testing.T) {
	_, err := NewAsyncCoalescing(
		WithDownstream(&captureAppender{}),
		WithTimeSlice(-time.Second),
	)
	assert.True(t, errors.Is(err, sentinel.ErrInvalidTimeSlice))
}

func TestAsyncCoalescing_FlushOnStop(t *testing.T) {
	capture := &captureAppender{}

	coalescing, err := NewAsyncCoalescing(
		WithTimeSlice(time.Minute), // too long to tick during the test
		WithDownstream(capture),
	)
	assert.NoError(t, err)

	coalescing.Start(context.Background())

	coalescing.Record(record("dbCall", 10*time.Millisecond))
	coalescing.Record(record("dbCall", 20*time.Millisecond))
	coalescing.Record(record("fileWrite", 5*time.Millisecond))

	err = coalescing.Stop(context.Background())
	assert.NoError(t, err)

	slices := capture.sealedSlices()
	assert.Equal(t, 1, len(slices))

	tagStats := slices[0].Stats()
	assert.Equal(t, int64(2), tagStats["dbCall"].Count)
	assert.Equal(t, int64(1), tagStats["fileWrite"].Count)
	assert.True(t, capture.stopped)

	// records after Stop are discarded, not delivered
	coalescing.Record(record("dbCall", time.Millisecond))
	assert.Equal(t, uint64(1), coalescing.Discarded())
}

func TestAsyncCoalescing_PeriodicFlush(t *testing.T) {
	capture := &captureAppender{}

	coalescing, err := NewAsyncCoalescing(
		WithTimeSlice(20*time.Millisecond),
		WithDownstream(capture),
	)
	assert.NoError(t, err)

	coalescing.Start(context.Background())
	defer coalescing.Stop(context.Background())

	coalescing.Record(record("dbCall", 10*time.Millisecond))

	deadline := time.Now().Add(2 * time.Second)
	for len(capture.sealedSlices()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	slices := capture.sealedSlices()
	assert.True(t, len(slices) > 0)
	assert.Equal(t, int64(1), slices[0].Stats()["dbCall"].Count)
}

func TestAsyncCoalescing_EmptySlicesNotPropagated(t *testing.T) {
	capture := &captureAppender{}

	coalescing, err := NewAsyncCoalescing(
		WithTimeSlice(10*time.Millisecond),
		WithDownstream(capture),
	)
	assert.NoError(t, err)

	coalescing.Start(context.Background())

	// several empty windows elapse
	time.Sleep(50 * time.Millisecond)

	err = coalescing.Stop(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, 0, len(capture.sealedSlices()))
}

func TestAsyncCoalescing_ConcurrentRecordDuringStop(t *testing.T) {
	capture := &captureAppender{}

	coalescing, err := NewAsyncCoalescing(
		WithTimeSlice(time.Minute),
		WithDownstream(capture),
	)
	assert.NoError(t, err)

	coalescing.Start(context.Background())

	const producers = 8

	var wg sync.WaitGroup

	start := make(chan struct{})

	for p := 0; p < producers; p++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			<-start

			for i := 0; i < 1000; i++ {
				coalescing.Record(record("dbCall", time.Millisecond))
			}
		}()
	}

	close(start)

	// Stop races the producers; a submit landing on either side of it must
	// never panic.
	err = coalescing.Stop(context.Background())
	assert.NoError(t, err)

	wg.Wait()

	var delivered int64
	for _, slice := range capture.sealedSlices() {
		if ts, ok := slice.Stats()["dbCall"]; ok {
			delivered += ts.Count
		}
	}

	assert.True(t, delivered+int64(coalescing.Discarded()) <= producers*1000)
}

func TestAsyncCoalescing_DiscardsWhenQueueFull(t *testing.T) {
	capture := &captureAppender{}

	// worker never started, the queue fills up
	coalescing, err := NewAsyncCoalescing(
		WithQueueSize(1),
		WithDownstream(capture),
	)
	assert.NoError(t, err)

	coalescing.Record(record("dbCall", time.Millisecond))
	coalescing.Record(record("dbCall", time.Millisecond))
	coalescing.Record(record("dbCall", time.Millisecond))

	assert.Equal(t, uint64(2), coalescing.Discarded())
}
