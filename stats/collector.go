package stats

import (
	"sync"
	"time"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/timewatch/internal/sentinel"
)

// ICollector is an interface that defines the methods that a timing
// statistics collector should implement.
type ICollector interface {
	// Record adds a completed timing sample under the given tag.
	Record(tag string, elapsed time.Duration)
	// Drain seals the current slice, starts a new one and returns the
	// sealed slice.
	Drain(stop time.Time) *Grouped
	// Current returns the live slice without rotating it.
	Current() *Grouped
}

// GroupedCollector accumulates samples into a grouped slice and rotates it on
// demand. The submit path goes through the sharded tag map, the rotation swap
// is guarded by its own lock.
type GroupedCollector struct {
	mu      sync.RWMutex
	current *Grouped
}

// NewGroupedCollector creates a collector with an open slice starting now.
func NewGroupedCollector() *GroupedCollector {
	return &GroupedCollector{
		current: NewGrouped(time.Now()),
	}
}

// Record adds a completed timing sample under the given tag.
func (c *GroupedCollector) Record(tag string, elapsed time.Duration) {
	c.mu.RLock()
	grouped := c.current
	c.mu.RUnlock()

	grouped.AddSample(tag, elapsed)
}

// Drain seals the current slice at the given instant and opens a fresh one.
func (c *GroupedCollector) Drain(stop time.Time) *Grouped {
	c.mu.Lock()

	sealed := c.current
	c.current = NewGrouped(stop)
	c.mu.Unlock()

	sealed.Seal(stop)

	return sealed
}

// Current returns the live slice without rotating it.
func (c *GroupedCollector) Current() *Grouped {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.current
}

// CollectorRegistry manages stats collector constructors.
type CollectorRegistry struct {
	collectors map[string]func() (ICollector, error)
}

// NewCollectorRegistry creates a new collector registry with default collectors pre-registered.
func NewCollectorRegistry() *CollectorRegistry {
	registry := &CollectorRegistry{
		collectors: make(map[string]func() (ICollector, error)),
	}
	// Register the default collector
	registry.Register("grouped", func() (ICollector, error) {
		return NewGroupedCollector(), nil
	})

	return registry
}

// NewEmptyCollectorRegistry creates a new collector registry without default collectors.
// This is useful for testing or when you want to register only specific collectors.
func NewEmptyCollectorRegistry() *CollectorRegistry {
	return &CollectorRegistry{
		collectors: make(map[string]func() (ICollector, error)),
	}
}

// Register registers a new stats collector with the given name.
func (r *CollectorRegistry) Register(name string, createFunc func() (ICollector, error)) {
	r.collectors[name] = createFunc
}

// NewCollector creates a new stats collector.
func (r *CollectorRegistry) NewCollector(collectorName string) (ICollector, error) {
	// Check the parameters.
	if collectorName == "" {
		return nil, ewrap.Wrap(sentinel.ErrParamCannotBeEmpty, "collectorName")
	}

	createFunc, ok := r.collectors[collectorName]
	if !ok {
		return nil, ewrap.Wrap(sentinel.ErrCollectorNotFound, collectorName)
	}

	return createFunc()
}

// NewCollector creates a new stats collector using a new registry instance with default collectors.
// The collectorName parameter is used to select the stats collector from the default collectors.
func NewCollector(collectorName string) (ICollector, error) {
	registry := NewCollectorRegistry()

	return registry.NewCollector(collectorName)
}
