package timewatch

import (
	"strings"
	"testing"
	"time"

	"github.com/longbridgeapp/assert"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"

	"github.com/hyp3rd/timewatch/internal/constants"
)

func TestLogRecorder_LogsTimingLine(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	lr := NewLogRecorder(logger, "timing", "debug")

	lr.Record(Record{Start: time.Now(), Elapsed: 42 * time.Millisecond, Tag: "dbCall"})

	entry := hook.LastEntry()
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "timing", entry.Data["logger"])
	assert.True(t, strings.Contains(entry.Message, "time[42] tag[dbCall]"))
}

func TestLogRecorder_UnrecognizedLevelFallsBackToInfo(t *testing.T) {
	lr := NewLogRecorder(nil, "", "loud")
	assert.Equal(t, logrus.InfoLevel, lr.Level())
}

func TestLogRecorder_DefaultLoggerName(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()

	lr := NewLogRecorder(logger, "", "info")
	lr.Record(Record{Start: time.Now(), Tag: "dbCall"})

	assert.Equal(t, constants.DefaultLoggerName, hook.LastEntry().Data["logger"])
}

func TestFactory_StartBindsRecorder(t *testing.T) {
	capture := &captureRecorder{}
	factory := NewFactory(capture)

	sw := factory.Start("dbCall")
	sw.Stop()

	assert.Equal(t, 1, len(capture.records))
	assert.Equal(t, "dbCall", capture.records[0].Tag)
}

func TestMultiRecorder_FansOut(t *testing.T) {
	first := &captureRecorder{}
	second := &captureRecorder{}

	mr := NewMultiRecorder(first, second)
	mr.Record(Record{Tag: "dbCall"})

	assert.Equal(t, 1, len(first.records))
	assert.Equal(t, 1, len(second.records))
}

func TestApplyMiddleware_DecoratesInOrder(t *testing.T) {
	var order []string

	base := RecorderFunc(func(Record) { order = append(order, "base") })

	tagged := func(name string) Middleware {
		return func(next Recorder) Recorder {
			return RecorderFunc(func(rec Record) {
				order = append(order, name)
				next.Record(rec)
			})
		}
	}

	rec := ApplyMiddleware(base, tagged("inner"), tagged("outer"))
	rec.Record(Record{Tag: "dbCall"})

	assert.Equal(t, []string{"outer", "inner", "base"}, order)
}
