package appender

import (
	"context"
	"encoding/csv"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/gofrs/flock"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/timewatch/internal/sentinel"
	"github.com/hyp3rd/timewatch/stats"
)

const (
	fileMode = 0o644

	// lockRetryDelay paces the lock acquisition retries so contention on a
	// shared statistics file does not busy-spin.
	lockRetryDelay = 10 * time.Millisecond
)

// FileAppender persists each sealed slice as CSV rows appended to a
// statistics file. A sibling lock file guards the append so several processes
// can share one statistics file.
type FileAppender struct {
	path string
	lock *flock.Flock
}

// NewFile creates a file statistics appender writing to the given path.
func NewFile(path string) (*FileAppender, error) {
	if path == "" {
		return nil, ewrap.Wrap(sentinel.ErrParamCannotBeEmpty, "path")
	}

	return &FileAppender{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

// csvHeader is written once, when the file is created empty.
var csvHeader = []string{"tag", "start", "stop", "mean", "stdDev", "min", "max", "count", "tps"}

// Append writes one row per tag, tags in lexical order. The file lock is held
// for the duration of the write.
func (fa *FileAppender) Append(ctx context.Context, slice *stats.Grouped) error {
	locked, err := fa.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return ewrap.Wrap(err, "locking statistics file")
	}

	if !locked {
		return ewrap.Wrap(sentinel.ErrTimeoutOrCanceled, "locking statistics file")
	}

	defer func() {
		// a failed unlock leaves a stale lock file, nothing to do about it here
		_ = fa.lock.Unlock()
	}()

	return fa.write(slice.Snapshot())
}

func (fa *FileAppender) write(snapshot stats.Snapshot) error {
	file, err := os.OpenFile(fa.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, fileMode)
	if err != nil {
		return ewrap.Wrap(err, "opening statistics file")
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return ewrap.Wrap(err, "statting statistics file")
	}

	writer := csv.NewWriter(file)

	if info.Size() == 0 {
		err = writer.Write(csvHeader)
		if err != nil {
			return ewrap.Wrap(err, "writing statistics header")
		}
	}

	tags := make([]string, 0, len(snapshot.Tags))
	for tag := range snapshot.Tags {
		tags = append(tags, tag)
	}

	sort.Strings(tags)

	for _, tag := range tags {
		ts := snapshot.Tags[tag]

		err = writer.Write([]string{
			tag,
			snapshot.Start.Format("2006-01-02 15:04:05"),
			snapshot.Stop.Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(ts.Mean, 'f', 1, 64),
			strconv.FormatFloat(ts.StdDev, 'f', 1, 64),
			strconv.FormatInt(ts.Min, 10),
			strconv.FormatInt(ts.Max, 10),
			strconv.FormatInt(ts.Count, 10),
			strconv.FormatFloat(ts.TPS, 'f', 1, 64),
		})
		if err != nil {
			return ewrap.Wrap(err, "writing statistics row")
		}
	}

	writer.Flush()

	return ewrap.Wrap(writer.Error(), "flushing statistics rows")
}

// Stop is a no-op, the file is opened per append.
func (fa *FileAppender) Stop(_ context.Context) error {
	return nil
}
