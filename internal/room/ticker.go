package room

import (
	"context"
	"time"
)

// Tick emits one broadcast round: table objects, each viewer's roster and the ghost cursors.
// Every SlowTickMultiple-th tick also re-sends the room options. Acquires r.Mu.
func (r *Room) Tick() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.tickUnsafe()
}

func (r *Room) tickUnsafe() {
	if r.terminated {
		return
	}
	r.broadcastAll(Event{Type: EventObjectUpdates, Payload: r.ObjectSnapshot()})
	r.broadcastRoster(EventCurrentPlayers)
	r.broadcastAll(Event{Type: EventMoveCursors, Payload: r.CursorSnapshot()})

	r.tickCount++
	if r.tickCount >= r.settings.SlowTickMultiple {
		r.broadcastOptions()
		r.tickCount = 0
	}
}

// TickCount returns the slow-tick counter. Caller must hold r.Mu.
func (r *Room) TickCount() int {
	return r.tickCount
}

// RunTicker ticks every TickRate until ctx is cancelled.
func (r *Room) RunTicker(ctx context.Context) {
	rate := r.settings.TickRate
	if rate <= 0 {
		rate = 50 * time.Millisecond
	}
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Tick()
		}
	}
}
