package registry

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory keeps the registry in process. It is the default for single-node runs and tests.
type Memory struct {
	mu    sync.Mutex
	rooms map[string]time.Time
}

func NewMemory() *Memory {
	return &Memory{rooms: make(map[string]time.Time)}
}

func (m *Memory) RegisterRoom(ctx context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[name] = time.Now().UTC()
	return nil
}

func (m *Memory) DeregisterRoom(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, name)
	return nil
}

func (m *Memory) Rooms(ctx context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, 0, len(m.rooms))
	for name, at := range m.rooms {
		out = append(out, Entry{Name: name, CreatedAt: at})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) Close() error { return nil }
