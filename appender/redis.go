package appender

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/timewatch/internal/libs/serializer"
	"github.com/hyp3rd/timewatch/internal/sentinel"
	"github.com/hyp3rd/timewatch/stats"
)

const defaultRedisKeyPrefix = "timewatch:stats"

// RedisAppender publishes each sealed slice to Redis: the serialized snapshot
// is stored under <prefix>:latest and published on the <prefix> channel, so
// other processes can subscribe to the statistics stream or poll the latest
// window.
type RedisAppender struct {
	rdb        *redis.Client          // redis client to interact with the redis server
	keyPrefix  string                 // keyPrefix namespaces the snapshot key and the publish channel
	Serializer serializer.ISerializer // Serializer encodes the snapshots before transport
}

// RedisOption configures a RedisAppender.
type RedisOption func(*RedisAppender)

// WithRedisClient sets the redis client.
func WithRedisClient(rdb *redis.Client) RedisOption {
	return func(ra *RedisAppender) { ra.rdb = rdb }
}

// WithRedisKeyPrefix sets the key prefix, defaults to "timewatch:stats".
func WithRedisKeyPrefix(prefix string) RedisOption {
	return func(ra *RedisAppender) { ra.keyPrefix = prefix }
}

// WithRedisSerializer sets the snapshot serializer, defaults to msgpack.
func WithRedisSerializer(s serializer.ISerializer) RedisOption {
	return func(ra *RedisAppender) { ra.Serializer = s }
}

// NewRedis creates a redis statistics appender with the given options.
func NewRedis(opts ...RedisOption) (*RedisAppender, error) {
	ra := &RedisAppender{}
	for _, opt := range opts {
		opt(ra)
	}

	// Check if the client is nil
	if ra.rdb == nil {
		return nil, sentinel.ErrNilClient
	}

	if ra.keyPrefix == "" {
		ra.keyPrefix = defaultRedisKeyPrefix
	}

	// Check if the serializer is nil
	if ra.Serializer == nil {
		var err error
		// Default the serializer to `msgpack`
		ra.Serializer, err = serializer.New("msgpack")
		if err != nil {
			return nil, err
		}
	}

	return ra, nil
}

// Append stores and publishes the serialized snapshot.
func (ra *RedisAppender) Append(ctx context.Context, slice *stats.Grouped) error {
	data, err := ra.Serializer.Marshal(slice.Snapshot())
	if err != nil {
		return err
	}

	err = ra.rdb.Set(ctx, ra.keyPrefix+":latest", data, 0).Err()
	if err != nil {
		return ewrap.Wrap(err, "storing statistics snapshot")
	}

	err = ra.rdb.Publish(ctx, ra.keyPrefix, data).Err()
	if err != nil {
		return ewrap.Wrap(err, "publishing statistics snapshot")
	}

	return nil
}

// Latest fetches and decodes the last stored snapshot.
func (ra *RedisAppender) Latest(ctx context.Context) (stats.Snapshot, error) {
	var snapshot stats.Snapshot

	data, err := ra.rdb.Get(ctx, ra.keyPrefix+":latest").Bytes()
	if err != nil {
		return snapshot, ewrap.Wrap(err, "fetching statistics snapshot")
	}

	err = ra.Serializer.Unmarshal(data, &snapshot)
	if err != nil {
		return snapshot, err
	}

	return snapshot, nil
}

// Stop closes the redis client.
func (ra *RedisAppender) Stop(_ context.Context) error {
	err := ra.rdb.Close()
	if err != nil {
		return ewrap.Wrap(err, "closing redis client")
	}

	return nil
}
