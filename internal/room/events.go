package room

import "encoding/json"

// Inbound (client to server) event names.
const (
	EventPlayerNickname      = "playerNickname"
	EventSeatSelected        = "seatSelected"
	EventObjectInput         = "objectInput"
	EventObjectRotation      = "objectRotation"
	EventObjectDepth         = "objectDepth"
	EventObjectRelease       = "objectRelease"
	EventObjectFlip          = "objectFlip"
	EventMergeStacks         = "mergeStacks"
	EventDrawTopSprite       = "drawTopSprite"
	EventShuffleStack        = "shuffleStack"
	EventObjectToHand        = "objectToHand"
	EventHandToTable         = "handToTable"
	EventHandToHand          = "handToHand"
	EventObjectSnap          = "objectSnap"
	EventDummyCursorLocation = "dummyCursorLocation"
	EventChatMessage         = "chat message"
	EventBackgroundColor     = "backgroundColor"
)

// Outbound (server to client) event names.
const (
	EventSeatAssignments = "seatAssignments"
	EventCurrentPlayers  = "currentPlayers"
	EventNameChange      = "nameChange"
	EventObjectUpdates   = "objectUpdates"
	EventMoveCursors     = "moveDummyCursors"
	EventOptions         = "options"
	EventError           = "error"
)

// Event is one frame on the room channel, in both directions.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Message is an inbound frame whose payload has not been decoded yet.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// broadcastAll fans ev out to every connected session. Caller must hold r.Mu.
func (r *Room) broadcastAll(ev Event) {
	for _, sink := range r.sinks {
		sink.Send(ev)
	}
}

// sendTo delivers ev to one session if it is still connected. Caller must hold r.Mu.
func (r *Room) sendTo(playerID string, ev Event) {
	if sink, ok := r.sinks[playerID]; ok {
		sink.Send(ev)
	}
}

// sendError tells one session its request was rejected.
func (r *Room) sendError(playerID, msg string) {
	r.sendTo(playerID, Event{
		Type:    EventError,
		Payload: map[string]interface{}{"message": msg},
	})
}

// broadcastSeats sends the full seat table. Caller must hold r.Mu.
func (r *Room) broadcastSeats() {
	r.broadcastAll(Event{Type: EventSeatAssignments, Payload: r.SeatSnapshot()})
}

// broadcastRoster sends every session its own view of the player roster. Caller must hold r.Mu.
func (r *Room) broadcastRoster(eventType string) {
	for viewer, sink := range r.sinks {
		sink.Send(Event{Type: eventType, Payload: r.RosterFor(viewer)})
	}
}

// broadcastRegistry pushes the seat table and roster immediately after a registry mutation.
func (r *Room) broadcastRegistry() {
	r.broadcastSeats()
	r.broadcastRoster(EventCurrentPlayers)
}

func (r *Room) broadcastOptions() {
	r.broadcastAll(Event{Type: EventOptions, Payload: r.options})
}
