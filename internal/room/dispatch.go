// internal/room/dispatch.go
package room

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
)

// ErrUnknownEvent is returned for an inbound type with no handler.
var ErrUnknownEvent = errors.New("unknown event type")

// handlerFunc applies one inbound message to the room. It runs with r.Mu held.
type handlerFunc func(r *Room, from string, payload json.RawMessage) error

var dispatchTable = map[string]handlerFunc{
	EventPlayerNickname:      handleNickname,
	EventSeatSelected:        handleSeatSelected,
	EventObjectInput:         handleObjectInput,
	EventObjectRotation:      handleObjectRotation,
	EventObjectDepth:         handleObjectDepth,
	EventObjectRelease:       handleObjectRelease,
	EventObjectFlip:          handleObjectFlip,
	EventMergeStacks:         handleMergeStacks,
	EventDrawTopSprite:       handleDrawTopSprite,
	EventShuffleStack:        handleShuffleStack,
	EventObjectToHand:        handleObjectToHand,
	EventHandToTable:         handleHandToTable,
	EventHandToHand:          handleHandToHand,
	EventObjectSnap:          handleObjectSnap,
	EventDummyCursorLocation: handleCursor,
	EventChatMessage:         handleChat,
	EventBackgroundColor:     handleBackgroundColor,
}

// Handle applies one inbound message from player `from`, serialized with every other message
// and tick of this room. Rejections the sender should hear about are sent back as an error
// event; stale or malformed messages are dropped. The error is returned for logging and tests.
func (r *Room) Handle(from string, msg Message) error {
	h, ok := dispatchTable[msg.Type]
	if !ok {
		r.log.WithField("player", from).Debugf("ignoring unknown event %q", msg.Type)
		return ErrUnknownEvent
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.terminated {
		return ErrRoomTerminated
	}
	if _, ok := r.players[from]; !ok {
		return ErrStaleReference
	}

	err := h(r, from, msg.Payload)
	r.report(from, msg.Type, err)
	return err
}

// HandleRaw decodes a wire frame and hands it to Handle.
func (r *Room) HandleRaw(from string, data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		r.log.WithField("player", from).Debugf("dropping undecodable frame: %v", err)
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return r.Handle(from, msg)
}

func (r *Room) report(from, eventType string, err error) {
	if err == nil {
		return
	}
	entry := r.log.WithFields(logrus.Fields{"player": from, "event": eventType})
	switch {
	case errors.Is(err, ErrHandLocked), errors.Is(err, ErrSeatTaken):
		entry.Infof("rejected: %v", err)
		r.sendError(from, err.Error())
	case errors.Is(err, ErrStaleReference), errors.Is(err, ErrMalformed), errors.Is(err, ErrNoInsertion):
		entry.Debugf("dropped: %v", err)
	default:
		entry.WithError(err).Warn("event failed")
	}
}

func decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return ErrMalformed
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// flexInt accepts both 3 and "3". Seat ids arrive as either.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

type seatPayload struct {
	ID            *flexInt `json:"id"`
	Socket        string   `json:"socket"`
	Name          string   `json:"name"`
	X             float64  `json:"x"`
	Y             float64  `json:"y"`
	PlayerSpacing *float64 `json:"playerSpacing"`
}

type objectPayload struct {
	ObjectID *int     `json:"objectId"`
	PlayerID string   `json:"playerId,omitempty"`
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
	Angle    *float64 `json:"angle"`
	Pos      *int     `json:"pos"`
}

type stackPayload struct {
	TopStack    *int `json:"topStack"`
	BottomStack *int `json:"bottomStack"`
}

type cursorPayload struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func decodeObject(raw json.RawMessage) (objectPayload, error) {
	var p objectPayload
	if err := decode(raw, &p); err != nil {
		return p, err
	}
	if p.ObjectID == nil {
		return p, ErrMalformed
	}
	return p, nil
}

func (p objectPayload) point() (float64, float64, error) {
	if p.X == nil || p.Y == nil {
		return 0, 0, ErrMalformed
	}
	return *p.X, *p.Y, nil
}

// owner resolves the hand a message refers to, defaulting to the sender's own.
func (p objectPayload) owner(from string) string {
	if p.PlayerID != "" {
		return p.PlayerID
	}
	return from
}

func handleNickname(r *Room, from string, raw json.RawMessage) error {
	var name string
	if err := decode(raw, &name); err != nil {
		return err
	}
	return r.SetNickname(from, name)
}

func handleSeatSelected(r *Room, from string, raw json.RawMessage) error {
	var p seatPayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	if p.ID == nil {
		return ErrMalformed
	}
	s, ok := r.seat(int(*p.ID))
	if !ok {
		return ErrStaleReference
	}
	spacing := s.Rotation
	if p.PlayerSpacing != nil {
		spacing = *p.PlayerSpacing
	}
	return r.SelectSeat(int(*p.ID), from, p.Name, spacing)
}

func handleObjectInput(r *Room, from string, raw json.RawMessage) error {
	p, err := decodeObject(raw)
	if err != nil {
		return err
	}
	x, y, err := p.point()
	if err != nil {
		return err
	}
	if p.PlayerID != "" {
		return r.MoveHandObject(from, p.PlayerID, *p.ObjectID, x, y)
	}
	return r.MoveObject(*p.ObjectID, x, y)
}

func handleObjectRotation(r *Room, from string, raw json.RawMessage) error {
	p, err := decodeObject(raw)
	if err != nil {
		return err
	}
	if p.Angle == nil {
		return ErrMalformed
	}
	return r.RotateObject(*p.ObjectID, *p.Angle)
}

// handleObjectDepth brings an object to the front. On the table this is also the start of a drag.
func handleObjectDepth(r *Room, from string, raw json.RawMessage) error {
	p, err := decodeObject(raw)
	if err != nil {
		return err
	}
	if _, err := r.BringToFront(*p.ObjectID); err != nil {
		return err
	}
	if _, onTable := r.tableObject(*p.ObjectID); onTable {
		return r.StartDrag(from, *p.ObjectID)
	}
	return nil
}

func handleObjectRelease(r *Room, from string, raw json.RawMessage) error {
	p, err := decodeObject(raw)
	if err != nil {
		return err
	}
	return r.ReleaseDrag(from, *p.ObjectID)
}

func handleObjectFlip(r *Room, from string, raw json.RawMessage) error {
	p, err := decodeObject(raw)
	if err != nil {
		return err
	}
	if p.PlayerID != "" {
		return r.FlipHandObject(p.PlayerID, *p.ObjectID)
	}
	return r.FlipObject(*p.ObjectID)
}

func handleMergeStacks(r *Room, from string, raw json.RawMessage) error {
	var p stackPayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	if p.TopStack == nil || p.BottomStack == nil {
		return ErrMalformed
	}
	return r.MergeStacks(*p.TopStack, *p.BottomStack)
}

func handleDrawTopSprite(r *Room, from string, raw json.RawMessage) error {
	var p stackPayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	if p.BottomStack == nil {
		return ErrMalformed
	}
	_, err := r.DrawTopSprite(*p.BottomStack)
	return err
}

func handleShuffleStack(r *Room, from string, raw json.RawMessage) error {
	p, err := decodeObject(raw)
	if err != nil {
		return err
	}
	return r.ShuffleStack(*p.ObjectID)
}

func handleObjectToHand(r *Room, from string, raw json.RawMessage) error {
	p, err := decodeObject(raw)
	if err != nil {
		return err
	}
	if p.Pos == nil {
		return ErrMalformed
	}
	return r.MoveToHand(from, *p.ObjectID, p.owner(from), *p.Pos)
}

func handleHandToTable(r *Room, from string, raw json.RawMessage) error {
	p, err := decodeObject(raw)
	if err != nil {
		return err
	}
	x, y, err := p.point()
	if err != nil {
		return err
	}
	return r.MoveToTable(from, p.owner(from), *p.ObjectID, x, y)
}

func handleHandToHand(r *Room, from string, raw json.RawMessage) error {
	p, err := decodeObject(raw)
	if err != nil {
		return err
	}
	if p.Pos == nil {
		return ErrMalformed
	}
	return r.MoveWithinHand(from, p.owner(from), *p.ObjectID, *p.Pos)
}

func handleObjectSnap(r *Room, from string, raw json.RawMessage) error {
	p, err := decodeObject(raw)
	if err != nil {
		return err
	}
	x, y, err := p.point()
	if err != nil {
		return err
	}
	_, _, err = r.SnapToHand(from, *p.ObjectID, p.PlayerID, x, y)
	return err
}

// handleCursor keys the ghost cursor by the sender, whatever playerId the payload claims.
func handleCursor(r *Room, from string, raw json.RawMessage) error {
	var p cursorPayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	if p.X == nil || p.Y == nil {
		return ErrMalformed
	}
	return r.UpdateCursor(from, *p.X, *p.Y)
}

func handleChat(r *Room, from string, raw json.RawMessage) error {
	var msg string
	if err := decode(raw, &msg); err != nil {
		return err
	}
	r.Chat(msg)
	return nil
}

func handleBackgroundColor(r *Room, from string, raw json.RawMessage) error {
	var color string
	if err := decode(raw, &color); err != nil {
		return err
	}
	return r.SetBackgroundColor(color)
}
