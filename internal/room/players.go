package room

import (
	"fmt"

	"github.com/jason-s-yu/tabletop/internal/models"
	"github.com/sirupsen/logrus"
)

// Join registers a new connection as a player, hands it a cursor skin and an empty hand, and
// pushes the seat table, roster and options to everyone. Acquires r.Mu.
func (r *Room) Join(playerID string, sink Sink) (*models.Player, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.terminated {
		return nil, ErrRoomTerminated
	}
	if _, exists := r.players[playerID]; exists {
		return nil, fmt.Errorf("player %s already joined room %s", playerID, r.Name)
	}
	if r.settings.MaxPlayers > 0 && len(r.players) >= r.settings.MaxPlayers {
		return nil, ErrRoomFull
	}

	r.playerCounter++
	cursor, unique := r.cursors.Acquire()
	p := &models.Player{
		PlayerID:     playerID,
		Name:         fmt.Sprintf("player%d", r.playerCounter),
		PlayerNum:    r.playerCounter,
		Dragging:     models.NoDrag,
		X:            TableCenterX,
		Y:            TableCenterY,
		PlayerCursor: cursor,
		SharedCursor: !unique,
	}
	if !unique {
		r.log.WithField("player", p.Name).Warnf("more players than cursors, sharing %q", cursor)
	}

	r.players[playerID] = p
	if sink != nil {
		r.sinks[playerID] = sink
	}
	r.hands[playerID] = &models.Hand{
		PlayerID: playerID,
		Zone:     models.HandZone{X: p.X, Y: p.Y},
	}

	r.log.WithFields(logrus.Fields{"player": p.Name, "num": p.PlayerNum}).Info("player connected")

	r.broadcastRegistry()
	r.broadcastOptions()

	cp := *p
	return &cp, nil
}

// Leave removes a player: its hand is evicted, its drags end, its cursor skin and seat are
// released. Acquires r.Mu. Returns false if the player was not in the room.
func (r *Room) Leave(playerID string) bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return false
	}

	r.evictHand(playerID)
	r.endDragsOf(playerID)
	r.cursors.Release(p.PlayerCursor, p.SharedCursor)
	r.vacateSeatsOf(playerID)

	delete(r.players, playerID)
	delete(r.sinks, playerID)
	delete(r.hands, playerID)
	delete(r.cursorInfo, playerID)

	r.log.WithFields(logrus.Fields{"player": p.Name, "num": p.PlayerNum}).Info("player disconnected")

	r.broadcastRegistry()
	return true
}

// Player returns a copy of the player record. Caller must hold r.Mu.
func (r *Room) Player(playerID string) (models.Player, bool) {
	p, ok := r.players[playerID]
	if !ok {
		return models.Player{}, false
	}
	return *p, true
}

// SetNickname renames a player and any seat bound to its connection. Caller must hold r.Mu.
func (r *Room) SetNickname(playerID, name string) error {
	if name == "" {
		return ErrMalformed
	}
	p, ok := r.players[playerID]
	if !ok {
		return ErrStaleReference
	}
	r.log.Infof("%s changed their name to %s", p.Name, name)
	p.Name = name
	for _, s := range r.seats {
		if s.Socket == playerID {
			s.Name = name
		}
	}
	r.broadcastRoster(EventNameChange)
	r.broadcastRegistry()
	return nil
}

// UpdateCursor records a ghost-cursor position for playerID. Caller must hold r.Mu.
func (r *Room) UpdateCursor(playerID string, x, y float64) error {
	if _, ok := r.players[playerID]; !ok {
		return ErrStaleReference
	}
	r.cursorInfo[playerID] = models.CursorInfo{PlayerID: playerID, X: x, Y: y}
	return nil
}

// Chat fans msg out verbatim. Caller must hold r.Mu.
func (r *Room) Chat(msg string) {
	r.broadcastAll(Event{Type: EventChatMessage, Payload: msg})
}

// SetBackgroundColor stores the table colour in the options and fans it out. Caller must hold r.Mu.
func (r *Room) SetBackgroundColor(color string) error {
	if color == "" {
		return ErrMalformed
	}
	r.options.BackgroundColor = color
	r.broadcastAll(Event{Type: EventBackgroundColor, Payload: color})
	return nil
}

// endDragsOf drops every drag held by playerID back onto the table.
func (r *Room) endDragsOf(playerID string) {
	for _, obj := range r.objects {
		if obj.Loc.State == models.Dragging && obj.Loc.PlayerID == playerID {
			obj.Loc = models.Location{State: models.OnTable}
		}
	}
}
