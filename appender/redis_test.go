package appender

import (
	"errors"
	"testing"
	"time"

	"github.com/longbridgeapp/assert"
	"github.com/redis/go-redis/v9"

	"github.com/hyp3rd/timewatch/internal/libs/serializer"
	"github.com/hyp3rd/timewatch/internal/sentinel"
	"github.com/hyp3rd/timewatch/stats"
)

func TestNewRedis_RequiresClient(t *testing.T) {
	_, err := NewRedis()
	assert.True(t, errors.Is(err, sentinel.ErrNilClient))
}

func TestNewRedis_DefaultsToMsgpack(t *testing.T) {
	ra, err := NewRedis(WithRedisClient(redis.NewClient(&redis.Options{})))
	assert.NoError(t, err)

	snapshot := roundTripSnapshot(t, ra.Serializer)
	assert.Equal(t, int64(2), snapshot.Tags["dbCall"].Count)
}

func TestRedisAppender_CborSerializer(t *testing.T) {
	cbor, err := serializer.New("cbor")
	assert.NoError(t, err)

	ra, err := NewRedis(
		WithRedisClient(redis.NewClient(&redis.Options{})),
		WithRedisSerializer(cbor),
	)
	assert.NoError(t, err)

	snapshot := roundTripSnapshot(t, ra.Serializer)
	assert.Equal(t, int64(2), snapshot.Tags["dbCall"].Count)
	assert.Equal(t, 15.0, snapshot.Tags["dbCall"].Mean)
	assert.Equal(t, int64(10), snapshot.Tags["dbCall"].Min)
	assert.Equal(t, int64(20), snapshot.Tags["dbCall"].Max)
}

// roundTripSnapshot encodes a sealed slice's snapshot through the appender's
// serializer and decodes it back, the way Append and Latest do around the
// redis transport.
func roundTripSnapshot(t *testing.T, s serializer.ISerializer) stats.Snapshot {
	t.Helper()

	slice := sealedSlice(t, map[string][]time.Duration{
		"dbCall": {10 * time.Millisecond, 20 * time.Millisecond},
	})

	data, err := s.Marshal(slice.Snapshot())
	assert.NoError(t, err)

	var snapshot stats.Snapshot

	err = s.Unmarshal(data, &snapshot)
	assert.NoError(t, err)

	return snapshot
}
