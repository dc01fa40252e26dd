package models

// NoDrag marks a player who is not dragging anything.
const NoDrag = -1

// Player is one connected client in a room. Hand contents are kept in the room's hand store
// and merged into the roster view when it is broadcast.
type Player struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	PlayerNum int    `json:"playerNum"`

	// Dragging holds the id of the one object this player is dragging, or NoDrag.
	Dragging int `json:"dragging"`

	// X, Y anchor the player's hand zone; PlayerSpacing is the zone's rotation in degrees.
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	PlayerSpacing float64 `json:"playerSpacing"`

	PlayerCursor string `json:"playerCursor"`

	// SharedCursor is true when the pool was exhausted and PlayerCursor is the shared fallback.
	SharedCursor bool `json:"-"`
}

// CursorInfo is the last reported pointer position of a player ("ghost cursor").
type CursorInfo struct {
	PlayerID string  `json:"playerId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}
