package monitor

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hyp3rd/timewatch/internal/constants"
	"github.com/hyp3rd/timewatch/stats"
)

// statSuffixes are the six attribute suffixes exposed per tag, in exposition
// order.
var statSuffixes = [...]string{"Mean", "StdDev", "Min", "Max", "Count", "TPS"}

// Notification is raised when an exposed attribute falls outside its
// acceptable range.
type Notification struct {
	Attribute string    `json:"attribute"`
	Value     float64   `json:"value"`
	Range     string    `json:"range"`
	Sequence  uint64    `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
}

// Monitor holds the current snapshot of exposed tag statistics plus the
// acceptable range configurations. The snapshot is replaced on each incoming
// statistics slice and may be read concurrently by external tooling at any
// time.
type Monitor struct {
	name     string
	tagNames map[string]struct{}
	ranges   []AcceptableRange

	mu    sync.RWMutex
	attrs map[string]float64

	seq atomic.Uint64

	lmu       sync.Mutex
	listeners []chan Notification
}

// New creates a monitor exposing, for every given tag, exactly the six
// attributes <tag>Mean, <tag>StdDev, <tag>Min, <tag>Max, <tag>Count and
// <tag>TPS, all starting at zero.
func New(name string, tagNames []string, ranges []AcceptableRange) *Monitor {
	m := &Monitor{
		name:     name,
		tagNames: make(map[string]struct{}, len(tagNames)),
		ranges:   ranges,
		attrs:    make(map[string]float64, len(tagNames)*len(statSuffixes)),
	}

	for _, tag := range tagNames {
		m.tagNames[tag] = struct{}{}
		for _, suffix := range statSuffixes {
			m.attrs[tag+suffix] = 0
		}
	}

	return m
}

// Name returns the object name the monitor registers under.
func (m *Monitor) Name() string {
	return m.name
}

// Ranges returns the configured acceptable ranges.
func (m *Monitor) Ranges() []AcceptableRange {
	return m.ranges
}

// Update replaces the exposed attribute values with the statistics of the
// given sealed slice. Tags not configured for exposure are ignored. After the
// swap every acceptable range is checked against the new values and
// violations are delivered to subscribers.
func (m *Monitor) Update(slice *stats.Grouped) {
	tagStats := slice.Stats()

	m.mu.Lock()

	for tag, ts := range tagStats {
		if _, exposed := m.tagNames[tag]; !exposed {
			continue
		}

		m.attrs[tag+"Mean"] = ts.Mean
		m.attrs[tag+"StdDev"] = ts.StdDev
		m.attrs[tag+"Min"] = float64(ts.Min)
		m.attrs[tag+"Max"] = float64(ts.Max)
		m.attrs[tag+"Count"] = float64(ts.Count)
		m.attrs[tag+"TPS"] = ts.TPS
	}
	m.mu.Unlock()

	m.checkRanges()
}

// Attribute returns the current value of the named attribute.
func (m *Monitor) Attribute(name string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.attrs[name]

	return v, ok
}

// Attributes returns a copy of the current attribute snapshot.
func (m *Monitor) Attributes() map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]float64, len(m.attrs))
	for name, v := range m.attrs {
		out[name] = v
	}

	return out
}

// AttributeNames returns the exposed attribute names in lexical order.
func (m *Monitor) AttributeNames() []string {
	m.mu.RLock()

	names := make([]string, 0, len(m.attrs))
	for name := range m.attrs {
		names = append(names, name)
	}
	m.mu.RUnlock()

	sort.Strings(names)

	return names
}

// Subscribe registers a notification listener. The returned channel is
// buffered; a listener that falls behind loses notifications instead of
// stalling the append path.
func (m *Monitor) Subscribe() <-chan Notification {
	ch := make(chan Notification, constants.DefaultNotificationBuffer)

	m.lmu.Lock()
	m.listeners = append(m.listeners, ch)
	m.lmu.Unlock()

	return ch
}

// Unsubscribe removes a listener previously returned by Subscribe and closes
// its channel.
func (m *Monitor) Unsubscribe(ch <-chan Notification) {
	m.lmu.Lock()
	defer m.lmu.Unlock()

	for i, listener := range m.listeners {
		if listener == ch {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			close(listener)

			return
		}
	}
}

// checkRanges evaluates every acceptable range against the current snapshot
// and notifies subscribers of violations.
func (m *Monitor) checkRanges() {
	for _, r := range m.ranges {
		value, ok := m.Attribute(r.Attribute())
		if !ok || r.InRange(value) {
			continue
		}

		m.notify(Notification{
			Attribute: r.Attribute(),
			Value:     value,
			Range:     r.String(),
			Sequence:  m.seq.Add(1),
			Timestamp: time.Now(),
		})
	}
}

// notify delivers a notification to every listener without blocking.
func (m *Monitor) notify(n Notification) {
	m.lmu.Lock()
	defer m.lmu.Unlock()

	for _, listener := range m.listeners {
		select {
		case listener <- n:
		default:
		}
	}
}
