package room

import (
	"math"
)

// NoInsertion is returned by FindInsertPos when no hand object is close enough to snap to.
const NoInsertion = -1

// HandSlot is one object sitting in a hand, as seen by the insertion heuristic.
type HandSlot struct {
	ObjectID int
	PlayerID string
	Pos      int
	X        float64
	Y        float64
	// Angle is the owning hand's orientation in degrees.
	Angle float64
}

// InsertQuery describes a dragged object looking for a place in a hand.
type InsertQuery struct {
	X, Y float64

	// Threshold is the strict upper bound on the distance to a candidate slot.
	Threshold float64

	// Owner restricts candidates to one hand. Empty means any hand.
	Owner string

	// Exclude skips the dragged object's own slot when it is reordered within its hand.
	Exclude int
}

// isLeft reports whether (x, y) lies before the slot along its hand's orientation.
func (s HandSlot) isLeft(x, y float64) bool {
	rad := s.Angle * math.Pi / 180
	return math.Cos(rad)*(x-s.X)+math.Sin(rad)*(y-s.Y) < 0
}

func (s HandSlot) dist(x, y float64) float64 {
	return math.Hypot(x-s.X, y-s.Y)
}

// FindInsertPos picks the hand and position a dropped object should be inserted at, from its
// nearest and second-nearest hand neighbours within q.Threshold. pos is NoInsertion when no
// neighbour qualifies.
func FindInsertPos(q InsertQuery, slots []HandSlot) (owner string, pos int) {
	var first, second *HandSlot
	firstDist, secondDist := math.Inf(1), math.Inf(1)

	for i := range slots {
		s := &slots[i]
		if q.Owner != "" && s.PlayerID != q.Owner {
			continue
		}
		if q.Exclude != 0 && s.ObjectID == q.Exclude {
			continue
		}
		d := s.dist(q.X, q.Y)
		if d >= q.Threshold {
			continue
		}
		switch {
		case d < firstDist:
			second, secondDist = first, firstDist
			first, firstDist = s, d
		case d < secondDist:
			second, secondDist = s, d
		}
	}

	if first == nil {
		return "", NoInsertion
	}

	if second != nil && second.PlayerID == first.PlayerID {
		lo, hi := first, second
		if lo.Pos > hi.Pos {
			lo, hi = hi, lo
		}
		leftOfLo := lo.isLeft(q.X, q.Y)
		leftOfHi := hi.isLeft(q.X, q.Y)
		switch {
		case leftOfLo && leftOfHi:
			return first.PlayerID, lo.Pos
		case !leftOfLo && !leftOfHi:
			return first.PlayerID, hi.Pos + 1
		default:
			return first.PlayerID, hi.Pos
		}
	}

	if first.isLeft(q.X, q.Y) {
		return first.PlayerID, first.Pos
	}
	return first.PlayerID, first.Pos + 1
}

// handSlots lists every object currently held in a hand. Caller must hold r.Mu.
func (r *Room) handSlots() []HandSlot {
	var slots []HandSlot
	for owner, h := range r.hands {
		for pos, id := range h.Objects {
			obj, ok := r.objects[id]
			if !ok {
				continue
			}
			slots = append(slots, HandSlot{
				ObjectID: id,
				PlayerID: owner,
				Pos:      pos,
				X:        obj.X,
				Y:        obj.Y,
				Angle:    h.Zone.Angle,
			})
		}
	}
	return slots
}
