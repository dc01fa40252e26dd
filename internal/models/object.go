package models

// ObjectState tags where a table object currently lives.
type ObjectState int

const (
	OnTable ObjectState = iota
	InHand
	Dragging
)

func (s ObjectState) String() string {
	switch s {
	case OnTable:
		return "on_table"
	case InHand:
		return "in_hand"
	case Dragging:
		return "dragging"
	}
	return "unknown"
}

// Location is the explicit state of an object. PlayerID is the hand owner for InHand and the
// dragging player for Dragging; Pos is only meaningful for InHand.
type Location struct {
	State    ObjectState
	PlayerID string
	Pos      int
}

// TableObject is a single card or an ordered stack. Items[len-1] is the top of the stack.
type TableObject struct {
	ObjectID int     `json:"objectId"`
	Items    []int   `json:"items"`
	IsFaceUp []bool  `json:"isFaceUp"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Angle    float64 `json:"angle"`
	Depth    int     `json:"objectDepth"`

	Loc Location `json:"-"`
}

// NewCard builds a singleton object.
func NewCard(id, sprite int, faceUp bool, x, y float64) *TableObject {
	return &TableObject{
		ObjectID: id,
		Items:    []int{sprite},
		IsFaceUp: []bool{faceUp},
		X:        x,
		Y:        y,
	}
}

// IsStack reports whether the object holds more than one sprite.
func (o *TableObject) IsStack() bool {
	return len(o.Items) > 1
}

// Top returns the index of the topmost sprite.
func (o *TableObject) Top() int {
	return len(o.Items) - 1
}

// OnTable reports whether the object is visible on the table (resting or being dragged).
func (o *TableObject) OnTable() bool {
	return o.Loc.State == OnTable || o.Loc.State == Dragging
}
