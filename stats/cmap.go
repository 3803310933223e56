// Package stats provides grouped timing statistics: per-tag aggregation of
// completed stop watch measurements over a bounded time slice, with derived
// mean, standard deviation, minimum, maximum, count and throughput values.
package stats

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// ShardCount is the number of shards of the tag map.
const ShardCount = 32

// ConcurrentMap is a "thread" safe map of type string:V keyed by tag name.
// To avoid lock bottlenecks on the hot submit path the map is divided into
// several (ShardCount) shards.
type ConcurrentMap[V any] struct {
	shards []*ConcurrentMapShared[V]
}

// ConcurrentMapShared is a "thread" safe string to V map shard.
type ConcurrentMapShared[V any] struct {
	sync.RWMutex // Read Write mutex, guards access to internal map.

	items map[string]V
}

// NewConcurrentMap creates a new concurrent map.
func NewConcurrentMap[V any]() ConcurrentMap[V] {
	cmap := ConcurrentMap[V]{
		shards: make([]*ConcurrentMapShared[V], ShardCount),
	}
	for i := range ShardCount {
		cmap.shards[i] = &ConcurrentMapShared[V]{items: make(map[string]V)}
	}

	return cmap
}

// GetShard returns the shard holding the given tag.
func (m ConcurrentMap[V]) GetShard(tag string) *ConcurrentMapShared[V] {
	return m.shards[xxhash.Sum64String(tag)%ShardCount]
}

// UpsertCb is called to produce the element to insert into the map.
// It runs while the shard lock is held, therefore it MUST NOT access other
// keys of the same map, as it can lead to deadlock since Go sync.RWLock is
// not reentrant.
type UpsertCb[V any] func(exist bool, valueInMap V) V

// Upsert updates an existing element or inserts a new one using UpsertCb.
func (m ConcurrentMap[V]) Upsert(tag string, cb UpsertCb[V]) V {
	shard := m.GetShard(tag)
	shard.Lock()

	v, ok := shard.items[tag]
	res := cb(ok, v)

	shard.items[tag] = res
	shard.Unlock()

	return res
}

// Get retrieves an element from the map under the given tag.
func (m ConcurrentMap[V]) Get(tag string) (V, bool) {
	shard := m.GetShard(tag)
	shard.RLock()

	val, ok := shard.items[tag]
	shard.RUnlock()

	return val, ok
}

// Count returns the number of elements within the map.
func (m ConcurrentMap[V]) Count() int {
	count := 0

	for i := range ShardCount {
		shard := m.shards[i]
		shard.RLock()

		count += len(shard.items)
		shard.RUnlock()
	}

	return count
}

// Items returns a point-in-time copy of the map contents.
func (m ConcurrentMap[V]) Items() map[string]V {
	items := make(map[string]V)

	for i := range ShardCount {
		shard := m.shards[i]
		shard.RLock()

		for tag, v := range shard.items {
			items[tag] = v
		}
		shard.RUnlock()
	}

	return items
}

// IterCb iterates over the map calling fn for each tag/value pair.
// The shard lock is held for the duration of each callback.
func (m ConcurrentMap[V]) IterCb(fn func(tag string, v V)) {
	for i := range ShardCount {
		shard := m.shards[i]
		shard.RLock()

		for tag, v := range shard.items {
			fn(tag, v)
		}
		shard.RUnlock()
	}
}
