package appender

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/longbridgeapp/assert"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
)

func TestLogAppender_RendersStatisticsBlock(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	la := NewLog(logger, "statistics", "info")

	slice := sealedSlice(t, map[string][]time.Duration{
		"dbCall":    {10 * time.Millisecond, 20 * time.Millisecond},
		"fileWrite": {5 * time.Millisecond},
	})

	err := la.Append(context.Background(), slice)
	assert.NoError(t, err)

	assert.Equal(t, 1, len(hook.Entries))

	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "statistics", entry.Data["logger"])
	assert.True(t, strings.Contains(entry.Message, "Performance Statistics from"))
	assert.True(t, strings.Contains(entry.Message, "dbCall"))
	assert.True(t, strings.Contains(entry.Message, "fileWrite"))

	// dbCall precedes fileWrite, the rendering is lexically ordered
	assert.True(t, strings.Index(entry.Message, "dbCall") < strings.Index(entry.Message, "fileWrite"))
}

func TestLogAppender_UnrecognizedLevelFallsBackToInfo(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()

	la := NewLog(logger, "", "not-a-level")

	slice := sealedSlice(t, map[string][]time.Duration{
		"dbCall": {10 * time.Millisecond},
	})

	err := la.Append(context.Background(), slice)
	assert.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}
