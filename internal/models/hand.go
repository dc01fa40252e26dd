package models

// HandZone is the spatial descriptor of a hand: centre and rotation in degrees.
type HandZone struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
}

// Hand is a player's private ordered sequence of object ids. The index of an id is its pos.
type Hand struct {
	PlayerID string
	Objects  []int
	Zone     HandZone
}

// IndexOf returns the pos of objectID in the hand or -1.
func (h *Hand) IndexOf(objectID int) int {
	for i, id := range h.Objects {
		if id == objectID {
			return i
		}
	}
	return -1
}

// Size is the number of objects in the hand.
func (h *Hand) Size() int {
	return len(h.Objects)
}
