package room

import (
	"math"

	"github.com/jason-s-yu/tabletop/internal/models"
	"github.com/sirupsen/logrus"
)

// Hand store and transfers. All functions here assume r.Mu is held. Every transfer leaves the
// touched hands dense: the slice index of an id is its pos and Loc.Pos mirrors it.

// Hand returns a copy of a player's hand.
func (r *Room) Hand(playerID string) (models.Hand, bool) {
	h, ok := r.hands[playerID]
	if !ok {
		return models.Hand{}, false
	}
	cp := *h
	cp.Objects = append([]int(nil), h.Objects...)
	return cp, true
}

// canTakeFrom enforces lockedHands: only the owner may pull objects out of their own hand.
func (r *Room) canTakeFrom(initiator, owner string) error {
	if r.options.LockedHands && initiator != owner {
		return ErrHandLocked
	}
	return nil
}

// layoutHand spreads the hand along its zone, centred on the zone anchor.
func (r *Room) layoutHand(h *models.Hand) {
	n := len(h.Objects)
	rad := h.Zone.Angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	for i, id := range h.Objects {
		obj, ok := r.objects[id]
		if !ok {
			continue
		}
		off := (float64(i) - float64(n-1)/2) * HandSpacing
		obj.X = h.Zone.X + off*cos
		obj.Y = h.Zone.Y + off*sin
		obj.Angle = h.Zone.Angle
		obj.Loc = models.Location{State: models.InHand, PlayerID: h.PlayerID, Pos: i}
	}
}

// removeAt cuts the object at pos out of h and compacts the rest.
func removeAt(h *models.Hand, pos int) {
	h.Objects = append(h.Objects[:pos], h.Objects[pos+1:]...)
}

// insertAt puts id at pos in h, shifting every entry at or after pos up by one.
func insertAt(h *models.Hand, pos, id int) {
	if pos > len(h.Objects) {
		pos = len(h.Objects)
	}
	h.Objects = append(h.Objects, 0)
	copy(h.Objects[pos+1:], h.Objects[pos:])
	h.Objects[pos] = id
}

// MoveToHand moves an object from the table or any hand into playerID's hand at pos.
func (r *Room) MoveToHand(initiator string, objectID int, playerID string, pos int) error {
	obj, ok := r.objects[objectID]
	if !ok {
		return ErrStaleReference
	}
	dst, ok := r.hands[playerID]
	if !ok {
		return ErrStaleReference
	}
	if pos < 0 {
		return ErrNoInsertion
	}

	switch obj.Loc.State {
	case models.InHand:
		if obj.Loc.PlayerID == playerID {
			return r.MoveWithinHand(initiator, playerID, objectID, pos)
		}
		if err := r.canTakeFrom(initiator, obj.Loc.PlayerID); err != nil {
			return err
		}
		src, ok := r.hands[obj.Loc.PlayerID]
		if !ok {
			return ErrStaleReference
		}
		old := src.IndexOf(objectID)
		if old < 0 {
			return ErrStaleReference
		}
		removeAt(src, old)
		r.layoutHand(src)
	default:
		r.clearDragOf(objectID)
	}

	insertAt(dst, pos, objectID)
	r.layoutHand(dst)
	r.log.WithFields(logrus.Fields{"object": objectID, "hand": playerID}).Debug("object moved to hand")
	return nil
}

// MoveWithinHand reorders one hand. pos is read against the hand as it was before the object
// left its old slot.
func (r *Room) MoveWithinHand(initiator, playerID string, objectID, pos int) error {
	h, ok := r.hands[playerID]
	if !ok {
		return ErrStaleReference
	}
	old := h.IndexOf(objectID)
	if old < 0 {
		return ErrStaleReference
	}
	if pos < 0 {
		return ErrNoInsertion
	}
	if err := r.canTakeFrom(initiator, playerID); err != nil {
		return err
	}
	if pos > len(h.Objects) {
		pos = len(h.Objects)
	}
	removeAt(h, old)
	if old < pos {
		pos--
	}
	insertAt(h, pos, objectID)
	r.layoutHand(h)
	return nil
}

// MoveToTable takes an object out of playerID's hand and drops it on the table at (x, y).
func (r *Room) MoveToTable(initiator, playerID string, objectID int, x, y float64) error {
	h, ok := r.hands[playerID]
	if !ok {
		return ErrStaleReference
	}
	old := h.IndexOf(objectID)
	obj, exists := r.objects[objectID]
	if old < 0 || !exists {
		return ErrStaleReference
	}
	if err := r.canTakeFrom(initiator, playerID); err != nil {
		return err
	}

	removeAt(h, old)
	r.layoutHand(h)

	obj.X = x
	obj.Y = y
	obj.Loc = models.Location{State: models.OnTable}
	if r.options.FlipWhenExitHand {
		for i := range obj.IsFaceUp {
			obj.IsFaceUp[i] = false
		}
	}
	r.depth++
	obj.Depth = r.depth
	return nil
}

// MoveHandObject overwrites the position of an object held in playerID's hand. The next layout
// pass puts it back in its slot.
func (r *Room) MoveHandObject(initiator, playerID string, objectID int, x, y float64) error {
	obj, ok := r.objects[objectID]
	if !ok || obj.Loc.State != models.InHand || obj.Loc.PlayerID != playerID {
		return ErrStaleReference
	}
	if err := r.canTakeFrom(initiator, playerID); err != nil {
		return err
	}
	obj.X = x
	obj.Y = y
	return nil
}

// SnapToHand evaluates the insertion heuristic for an object dropped at (x, y) and performs the
// resulting transfer. owner, when set, limits candidates to that player's hand. An empty hand
// whose zone is within reach takes the object at pos 0.
func (r *Room) SnapToHand(initiator string, objectID int, owner string, x, y float64) (string, int, error) {
	if _, ok := r.objects[objectID]; !ok {
		return "", NoInsertion, ErrStaleReference
	}
	target, pos := FindInsertPos(InsertQuery{
		X:         x,
		Y:         y,
		Threshold: r.settings.SnapDistance,
		Owner:     owner,
		Exclude:   objectID,
	}, r.handSlots())

	if pos == NoInsertion {
		target = r.nearestEmptyHand(owner, x, y)
		if target == "" {
			return "", NoInsertion, ErrNoInsertion
		}
		pos = 0
	}
	if err := r.MoveToHand(initiator, objectID, target, pos); err != nil {
		return "", NoInsertion, err
	}
	return target, pos, nil
}

func (r *Room) nearestEmptyHand(filter string, x, y float64) string {
	best, bestDist := "", r.settings.SnapDistance
	for owner, h := range r.hands {
		if len(h.Objects) > 0 || (filter != "" && owner != filter) {
			continue
		}
		if d := math.Hypot(x-h.Zone.X, y-h.Zone.Y); d < bestDist {
			best, bestDist = owner, d
		}
	}
	return best
}

// evictHand empties a departing player's hand. By default the objects are destroyed; with
// ReturnHandOnLeave they go back to the table face-down at the hand zone.
func (r *Room) evictHand(playerID string) {
	h, ok := r.hands[playerID]
	if !ok || len(h.Objects) == 0 {
		return
	}
	if !r.options.ReturnHandOnLeave {
		r.log.WithField("player", playerID).Warnf("destroying %d objects held in hand", len(h.Objects))
	}
	for _, id := range h.Objects {
		obj, ok := r.objects[id]
		if !ok {
			continue
		}
		if !r.options.ReturnHandOnLeave {
			r.retire(id)
			continue
		}
		obj.X = h.Zone.X
		obj.Y = h.Zone.Y
		for i := range obj.IsFaceUp {
			obj.IsFaceUp[i] = false
		}
		obj.Loc = models.Location{State: models.OnTable}
		r.depth++
		obj.Depth = r.depth
	}
	h.Objects = nil
}
