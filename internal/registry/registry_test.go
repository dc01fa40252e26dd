package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseRegistry runs the behaviour every backend must share.
func exerciseRegistry(t *testing.T, reg Registry) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, reg.RegisterRoom(ctx, "registry-test-b"))
	require.NoError(t, reg.RegisterRoom(ctx, "registry-test-a"))
	require.NoError(t, reg.RegisterRoom(ctx, "registry-test-a"), "registering twice is an upsert")
	assert.Error(t, reg.RegisterRoom(ctx, "  "))

	rooms, err := reg.Rooms(ctx)
	require.NoError(t, err)
	names := map[string]bool{}
	for _, e := range rooms {
		names[e.Name] = true
		assert.False(t, e.CreatedAt.IsZero())
	}
	assert.True(t, names["registry-test-a"])
	assert.True(t, names["registry-test-b"])

	require.NoError(t, reg.DeregisterRoom(ctx, "registry-test-a"))
	require.NoError(t, reg.DeregisterRoom(ctx, "registry-test-a"), "deregistering a missing room is not an error")
	require.NoError(t, reg.DeregisterRoom(ctx, "registry-test-b"))

	rooms, err = reg.Rooms(ctx)
	require.NoError(t, err)
	for _, e := range rooms {
		assert.NotEqual(t, "registry-test-a", e.Name)
		assert.NotEqual(t, "registry-test-b", e.Name)
	}
}

func TestMemoryRegistry(t *testing.T) {
	reg := NewMemory()
	defer reg.Close()
	exerciseRegistry(t, reg)
}

func TestSQLiteRegistry(t *testing.T) {
	reg, err := NewSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer reg.Close()
	exerciseRegistry(t, reg)
}

func TestSQLiteRegistryPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rooms.db")
	ctx := context.Background()

	reg, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, reg.RegisterRoom(ctx, "kept"))
	require.NoError(t, reg.Close())

	reg, err = NewSQLite(ctx, path)
	require.NoError(t, err)
	defer reg.Close()
	rooms, err := reg.Rooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "kept", rooms[0].Name)
}

func TestPostgresRegistry(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	reg, err := NewPostgres(context.Background(), url)
	require.NoError(t, err)
	defer reg.Close()
	exerciseRegistry(t, reg)
}

func TestRedisRegistry(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	reg, err := NewRedis(context.Background(), addr, 0, "tabletop_rooms_test")
	require.NoError(t, err)
	defer reg.Close()
	exerciseRegistry(t, reg)
}

func TestNewSelectsBackend(t *testing.T) {
	ctx := context.Background()

	reg, mode, err := New(ctx, Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "memory", mode)
	assert.IsType(t, &Memory{}, reg)

	reg, mode, err = New(ctx, Options{Mode: " SQLite ", SQLitePath: ":memory:"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", mode)
	require.NoError(t, reg.Close())

	_, _, err = New(ctx, Options{Mode: "etcd"}, nil)
	assert.Error(t, err)
}

// callLog records backend calls in the order they reach the backend.
type callLog struct {
	mu    sync.Mutex
	calls []string
	slow  time.Duration
	err   error
}

func (c *callLog) record(call string) error {
	time.Sleep(c.slow)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
	return c.err
}

func (c *callLog) RegisterRoom(ctx context.Context, name string) error {
	return c.record("register " + name)
}

func (c *callLog) DeregisterRoom(ctx context.Context, name string) error {
	return c.record("deregister " + name)
}

func (c *callLog) Rooms(ctx context.Context) ([]Entry, error) { return nil, nil }
func (c *callLog) Close() error                               { return nil }

func TestOrderedKeepsQueueOrder(t *testing.T) {
	backend := &callLog{slow: 10 * time.Millisecond}
	q := NewOrdered(backend, nil)
	ctx := context.Background()

	// A torn-down room's deregistration followed by its successor's registration.
	require.NoError(t, q.RegisterRoom(ctx, "alpha"))
	require.NoError(t, q.DeregisterRoom(ctx, "alpha"))
	require.NoError(t, q.RegisterRoom(ctx, "alpha"))
	require.NoError(t, q.Close(ctx))

	assert.Equal(t, []string{"register alpha", "deregister alpha", "register alpha"}, backend.calls)
	assert.ErrorIs(t, q.RegisterRoom(ctx, "beta"), ErrClosed)
}

func TestOrderedSuccessorStaysRegistered(t *testing.T) {
	mem := NewMemory()
	q := NewOrdered(mem, nil)
	ctx := context.Background()

	require.NoError(t, q.RegisterRoom(ctx, "alpha"))
	require.NoError(t, q.DeregisterRoom(ctx, "alpha"))
	require.NoError(t, q.RegisterRoom(ctx, "alpha"))
	require.NoError(t, q.Close(ctx))

	rooms, err := mem.Rooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "alpha", rooms[0].Name)
}

func TestOrderedContinuesAfterFailure(t *testing.T) {
	backend := &callLog{err: errors.New("backend down")}
	q := NewOrdered(backend, nil)
	ctx := context.Background()

	require.NoError(t, q.RegisterRoom(ctx, "a"))
	require.NoError(t, q.DeregisterRoom(ctx, "b"))
	require.NoError(t, q.Close(ctx))
	assert.Equal(t, []string{"register a", "deregister b"}, backend.calls)
}
