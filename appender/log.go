package appender

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hyp3rd/timewatch/internal/constants"
	"github.com/hyp3rd/timewatch/stats"
)

// LogAppender renders each sealed slice as a statistics block through a named
// logrus entry at a configured level.
type LogAppender struct {
	entry *logrus.Entry
	level logrus.Level
}

// NewLog creates a log appender under the given logger category and
// severity-level name. An unrecognized level name falls back to Info.
func NewLog(logger *logrus.Logger, loggerName, levelName string) *LogAppender {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if loggerName == "" {
		loggerName = constants.DefaultLoggerName
	}

	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		level = logrus.InfoLevel
	}

	return &LogAppender{
		entry: logger.WithField("logger", loggerName),
		level: level,
	}
}

// Append logs the slice as one block: a window header followed by one line
// per tag, tags in lexical order so consecutive slices diff cleanly.
func (la *LogAppender) Append(_ context.Context, slice *stats.Grouped) error {
	snapshot := slice.Snapshot()

	tags := make([]string, 0, len(snapshot.Tags))
	for tag := range snapshot.Tags {
		tags = append(tags, tag)
	}

	sort.Strings(tags)

	var b strings.Builder

	fmt.Fprintf(&b, "Performance Statistics from %s to %s\n",
		snapshot.Start.Format("2006-01-02 15:04:05"), snapshot.Stop.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "%-32s%12s%12s%8s%8s%8s%10s\n", "Tag", "Avg(ms)", "StdDev(ms)", "Min", "Max", "Count", "TPS")

	for _, tag := range tags {
		ts := snapshot.Tags[tag]
		fmt.Fprintf(&b, "%-32s%12.1f%12.1f%8d%8d%8d%10.1f\n",
			tag, ts.Mean, ts.StdDev, ts.Min, ts.Max, ts.Count, ts.TPS)
	}

	la.entry.Log(la.level, b.String())

	return nil
}

// Stop is a no-op, the underlying logger is shared.
func (la *LogAppender) Stop(_ context.Context) error {
	return nil
}
