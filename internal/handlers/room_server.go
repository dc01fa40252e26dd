// internal/handlers/room_server.go
package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/jason-s-yu/tabletop/internal/models"
	"github.com/jason-s-yu/tabletop/internal/registry"
	"github.com/jason-s-yu/tabletop/internal/room"
	"github.com/sirupsen/logrus"
)

// RoomServer owns the live rooms of this process. A room is spun up by its first connection
// and removes itself from the store when its lifecycle tears it down.
type RoomServer struct {
	Store    *room.RoomStore
	Registry registry.Registry
	Settings room.Settings
	Logger   *logrus.Logger

	// queue applies the rooms' register and deregister calls to Registry in order.
	queue *registry.Ordered

	ctx    context.Context
	cancel context.CancelFunc
}

func NewRoomServer(settings room.Settings, reg registry.Registry, logger *logrus.Logger) *RoomServer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	rs := &RoomServer{
		Store:    room.NewRoomStore(logger),
		Registry: reg,
		Settings: settings,
		Logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	if reg != nil {
		rs.queue = registry.NewOrdered(reg, logger)
	}
	return rs
}

// getOrStart returns the named room, starting it if this call created it.
func (rs *RoomServer) getOrStart(name string) *room.Room {
	rm, created := rs.Store.GetOrCreate(name, func() *room.Room {
		return room.NewRoom(name, rs.Settings, rs.Logger)
	})
	if created {
		var reg room.RoomRegistry
		if rs.queue != nil {
			reg = rs.queue
		}
		rm.Start(rs.ctx, reg, func() { rs.Store.DeleteRoom(rm) })
	}
	return rm
}

// JoinRoom adds a connection to the named room. A join that races an idle teardown retries
// once on a fresh room of the same name.
func (rs *RoomServer) JoinRoom(name, playerID string, sink room.Sink) (*room.Room, *models.Player, error) {
	for attempt := 0; attempt < 2; attempt++ {
		rm := rs.getOrStart(name)
		p, err := rm.Join(playerID, sink)
		if errors.Is(err, room.ErrRoomTerminated) {
			rs.Store.DeleteRoom(rm)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		return rm, p, nil
	}
	return nil, nil, room.ErrRoomTerminated
}

// RoomSummary is one entry of the room list.
type RoomSummary struct {
	Name    string `json:"name"`
	Players int    `json:"players"`
}

// ListRooms reports the rooms live in this process with their player counts.
func (rs *RoomServer) ListRooms() []RoomSummary {
	names := rs.Store.Names()
	out := make([]RoomSummary, 0, len(names))
	for _, name := range names {
		rm, ok := rs.Store.GetRoom(name)
		if !ok {
			continue
		}
		out = append(out, RoomSummary{Name: name, Players: rm.NumPlayers()})
	}
	return out
}

// Shutdown stops every room's loops, removes this process's rooms from the registry and waits
// for the queued registry calls to finish.
func (rs *RoomServer) Shutdown(ctx context.Context) {
	names := rs.Store.Names()
	rs.cancel()
	for _, name := range names {
		if rm, ok := rs.Store.GetRoom(name); ok {
			rm.Terminate()
			rs.Store.DeleteRoom(rm)
		}
		if rs.queue != nil {
			_ = rs.queue.DeregisterRoom(ctx, name)
		}
	}
	if rs.queue == nil {
		return
	}
	drainCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rs.queue.Close(drainCtx); err != nil {
		rs.Logger.WithError(err).Error("room registry calls still pending at shutdown")
	}
}
