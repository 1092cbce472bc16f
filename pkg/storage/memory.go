package storage

import (
	"context"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
)

// Memory is a PreferencesStore kept in process memory. It backs tests and the
// development binary when no persistent backend is configured.
type Memory struct {
	values *xsync.MapOf[string, string]
}

// Make sure we conform to the interface
var _ PreferencesStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{values: xsync.NewMapOf[string, string]()}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values.Load(key)
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.values.Store(key, value)
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.values.Delete(key)
	return nil
}

// Connections is a ConnectionManager for websocket clients served by this process.
type Connections struct {
	ids *xsync.MapOf[string, struct{}]
}

// Make sure we conform to the interface
var _ ConnectionManager = (*Connections)(nil)

func NewConnections() *Connections {
	return &Connections{ids: xsync.NewMapOf[string, struct{}]()}
}

func (c *Connections) AddConnection(_ context.Context, connectionID string) error {
	c.ids.Store(connectionID, struct{}{})
	return nil
}

func (c *Connections) RemoveConnection(_ context.Context, connectionID string) error {
	c.ids.Delete(connectionID)
	return nil
}

// GetAllConnections returns the open ids in lexical order.
func (c *Connections) GetAllConnections(_ context.Context) ([]string, error) {
	out := make([]string, 0, c.ids.Size())
	c.ids.Range(func(id string, _ struct{}) bool {
		out = append(out, id)
		return true
	})
	sort.Strings(out)
	return out, nil
}
