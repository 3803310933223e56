package monitor

import (
	"errors"
	"testing"

	"github.com/longbridgeapp/assert"

	"github.com/hyp3rd/timewatch/internal/sentinel"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	m := New("timewatch:name=First", []string{"dbCall"}, nil)

	err := registry.Register(m.Name(), m)
	assert.NoError(t, err)
	assert.Equal(t, 1, registry.Count())

	// duplicate registration fails
	err = registry.Register(m.Name(), m)
	assert.True(t, errors.Is(err, sentinel.ErrMonitorRegistered))

	// empty name fails
	err = registry.Register("", m)
	assert.True(t, errors.Is(err, sentinel.ErrParamCannotBeEmpty))

	found, ok := registry.Lookup(m.Name())
	assert.True(t, ok)
	assert.Equal(t, m, found)

	assert.Equal(t, []string{"timewatch:name=First"}, registry.Names())

	err = registry.Unregister(m.Name())
	assert.NoError(t, err)
	assert.Equal(t, 0, registry.Count())

	// unregistering twice fails
	err = registry.Unregister(m.Name())
	assert.True(t, errors.Is(err, sentinel.ErrMonitorNotFound))
}
