package appender

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/longbridgeapp/assert"

	"github.com/hyp3rd/timewatch/internal/sentinel"
	"github.com/hyp3rd/timewatch/stats"
)

func sealedSlice(t *testing.T, samples map[string][]time.Duration) *stats.Grouped {
	t.Helper()

	start := time.Date(2026, time.August, 26, 10, 0, 0, 0, time.UTC)

	grouped := stats.NewGrouped(start)
	for tag, elapsed := range samples {
		for _, d := range elapsed {
			grouped.AddSample(tag, d)
		}
	}

	grouped.Seal(start.Add(30 * time.Second))

	return grouped
}

func TestFileAppender_RequiresPath(t *testing.T) {
	_, err := NewFile("")
	assert.True(t, errors.Is(err, sentinel.ErrParamCannotBeEmpty))
}

func TestFileAppender_WritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.csv")

	fa, err := NewFile(path)
	assert.NoError(t, err)

	slice := sealedSlice(t, map[string][]time.Duration{
		"dbCall":    {10 * time.Millisecond, 20 * time.Millisecond},
		"fileWrite": {5 * time.Millisecond},
	})

	err = fa.Append(context.Background(), slice)
	assert.NoError(t, err)

	rows := readCSV(t, path)
	assert.Equal(t, 3, len(rows))
	assert.Equal(t, "tag", rows[0][0])
	assert.Equal(t, "dbCall", rows[1][0])
	assert.Equal(t, "15.0", rows[1][3]) // mean
	assert.Equal(t, "2", rows[1][7])    // count
	assert.Equal(t, "fileWrite", rows[2][0])

	err = fa.Stop(context.Background())
	assert.NoError(t, err)
}

func TestFileAppender_HeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.csv")

	fa, err := NewFile(path)
	assert.NoError(t, err)

	slice := sealedSlice(t, map[string][]time.Duration{
		"dbCall": {10 * time.Millisecond},
	})

	assert.NoError(t, fa.Append(context.Background(), slice))
	assert.NoError(t, fa.Append(context.Background(), slice))

	rows := readCSV(t, path)
	assert.Equal(t, 3, len(rows)) // one header, two rows
	assert.Equal(t, "tag", rows[0][0])
	assert.Equal(t, "dbCall", rows[1][0])
	assert.Equal(t, "dbCall", rows[2][0])
}

func TestFileAppender_LockContention(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.csv")

	fa, err := NewFile(path)
	assert.NoError(t, err)

	// another holder keeps the lock for the whole test
	holder := flock.New(path + ".lock")
	err = holder.Lock()
	assert.NoError(t, err)

	defer holder.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	slice := sealedSlice(t, map[string][]time.Duration{
		"dbCall": {10 * time.Millisecond},
	})

	err = fa.Append(ctx, slice)
	assert.True(t, err != nil)

	// nothing was written while the lock was held
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	file, err := os.Open(path)
	assert.NoError(t, err)

	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	assert.NoError(t, err)

	return rows
}
