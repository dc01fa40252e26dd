package room

import (
	"testing"

	"github.com/jason-s-yu/tabletop/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickBroadcastsSnapshots(t *testing.T) {
	r, ids, sinks := setupTestRoom(t, 2, nil)
	require.NoError(t, send(t, r, ids[1], EventDummyCursorLocation, map[string]interface{}{"playerId": "spoofed", "x": 3, "y": 4}))
	r.Mu.Lock()
	require.NoError(t, r.MoveToHand(ids[0], 1, ids[0], 0))
	r.Mu.Unlock()
	for _, s := range sinks {
		s.clear()
	}

	r.Tick()

	for _, id := range ids {
		s := sinks[id]
		assert.Equal(t, 1, s.count(EventObjectUpdates))
		assert.Equal(t, 1, s.count(EventCurrentPlayers))
		assert.Equal(t, 1, s.count(EventMoveCursors))
		assert.Equal(t, 0, s.count(EventOptions))
	}

	objects := sinks[ids[0]].last(EventObjectUpdates).Payload.(map[int]models.TableObject)
	assert.Len(t, objects, 52)
	assert.NotContains(t, objects, 1)

	cursors := sinks[ids[0]].last(EventMoveCursors).Payload.(map[string]models.CursorInfo)
	require.Contains(t, cursors, ids[1])
	assert.NotContains(t, cursors, "spoofed")
	assert.Equal(t, 3.0, cursors[ids[1]].X)
}

func TestSlowTickOptions(t *testing.T) {
	r, ids, sinks := setupTestRoom(t, 1, nil)
	r.settings.SlowTickMultiple = 4
	sink := sinks[ids[0]]
	sink.clear()

	for i := 0; i < 3; i++ {
		r.Tick()
	}
	assert.Equal(t, 0, sink.count(EventOptions))
	r.Mu.Lock()
	assert.Equal(t, 3, r.TickCount())
	r.Mu.Unlock()

	r.Tick()
	assert.Equal(t, 1, sink.count(EventOptions))
	r.Mu.Lock()
	assert.Equal(t, 0, r.TickCount(), "counter resets on the slow tick")
	r.Mu.Unlock()

	for i := 0; i < 8; i++ {
		r.Tick()
	}
	assert.Equal(t, 3, sink.count(EventOptions))
	assert.Equal(t, 12, sink.count(EventObjectUpdates))
}

func TestTickAfterTerminateIsSilent(t *testing.T) {
	r, ids, sinks := setupTestRoom(t, 1, nil)
	r.Terminate()
	sinks[ids[0]].clear()
	r.Tick()
	assert.Equal(t, 0, sinks[ids[0]].count(EventObjectUpdates))
}
