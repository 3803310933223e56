package monitor

import (
	"sort"
	"sync"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/timewatch/internal/sentinel"
)

// Registry holds monitors under unique object names so external tooling can
// look them up by name. Registration and unregistration are synchronous,
// one-time side effects.
type Registry struct {
	mu       sync.RWMutex
	monitors map[string]*Monitor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		monitors: make(map[string]*Monitor),
	}
}

// DefaultRegistry is the process-wide registry used when none is configured.
var DefaultRegistry = NewRegistry()

// Register adds a monitor under the given name. Registering a taken name is
// an error.
func (r *Registry) Register(name string, m *Monitor) error {
	if name == "" {
		return ewrap.Wrap(sentinel.ErrParamCannotBeEmpty, "name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.monitors[name]; ok {
		return ewrap.Wrap(sentinel.ErrMonitorRegistered, name)
	}

	r.monitors[name] = m

	return nil
}

// Unregister removes the monitor registered under the given name.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.monitors[name]; !ok {
		return ewrap.Wrap(sentinel.ErrMonitorNotFound, name)
	}

	delete(r.monitors, name)

	return nil
}

// Lookup returns the monitor registered under the given name.
func (r *Registry) Lookup(name string) (*Monitor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.monitors[name]

	return m, ok
}

// Names returns the registered monitor names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()

	names := make([]string, 0, len(r.monitors))
	for name := range r.monitors {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)

	return names
}

// Count returns the number of registered monitors.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.monitors)
}
