package room

import (
	"github.com/jason-s-yu/tabletop/internal/models"
)

// Object store. Every mutator here assumes the caller holds r.Mu and answers a reference to a
// missing or retired object with ErrStaleReference, which callers drop.

// Object returns the live object, wherever it is.
func (r *Room) Object(id int) (*models.TableObject, bool) {
	obj, ok := r.objects[id]
	return obj, ok
}

// tableObject returns the object only if it is on the table (resting or dragged).
func (r *Room) tableObject(id int) (*models.TableObject, bool) {
	obj, ok := r.objects[id]
	if !ok || !obj.OnTable() {
		return nil, false
	}
	return obj, true
}

// MoveObject overwrites a table object's position. Last write wins; travel is not validated.
func (r *Room) MoveObject(id int, x, y float64) error {
	obj, ok := r.tableObject(id)
	if !ok {
		return ErrStaleReference
	}
	obj.X = x
	obj.Y = y
	return nil
}

// RotateObject overwrites a table object's angle.
func (r *Room) RotateObject(id int, angle float64) error {
	obj, ok := r.tableObject(id)
	if !ok {
		return ErrStaleReference
	}
	obj.Angle = angle
	return nil
}

// BringToFront bumps the room depth counter and stamps it on the object.
func (r *Room) BringToFront(id int) (int, error) {
	obj, ok := r.objects[id]
	if !ok {
		return 0, ErrStaleReference
	}
	r.depth++
	obj.Depth = r.depth
	return r.depth, nil
}

// Depth returns the current value of the depth counter.
func (r *Room) Depth() int {
	return r.depth
}

// StartDrag marks a table object as dragged by playerID. Dragging is advisory: it never blocks
// another player's input on the same object.
func (r *Room) StartDrag(playerID string, id int) error {
	p, ok := r.players[playerID]
	if !ok {
		return ErrStaleReference
	}
	obj, ok := r.tableObject(id)
	if !ok {
		return ErrStaleReference
	}
	if p.Dragging != models.NoDrag && p.Dragging != id {
		r.releaseDrag(p)
	}
	obj.Loc = models.Location{State: models.Dragging, PlayerID: playerID}
	p.Dragging = id
	return nil
}

// ReleaseDrag ends playerID's drag of object id.
func (r *Room) ReleaseDrag(playerID string, id int) error {
	p, ok := r.players[playerID]
	if !ok || p.Dragging != id {
		return ErrStaleReference
	}
	r.releaseDrag(p)
	return nil
}

func (r *Room) releaseDrag(p *models.Player) {
	if obj, ok := r.objects[p.Dragging]; ok && obj.Loc.State == models.Dragging && obj.Loc.PlayerID == p.PlayerID {
		obj.Loc = models.Location{State: models.OnTable}
	}
	p.Dragging = models.NoDrag
}

// clearDragOf forgets any player's drag of object id once it leaves the table.
func (r *Room) clearDragOf(id int) {
	for _, p := range r.players {
		if p.Dragging == id {
			p.Dragging = models.NoDrag
		}
	}
}

// FlipObject toggles the face of a table object's top sprite.
func (r *Room) FlipObject(id int) error {
	obj, ok := r.tableObject(id)
	if !ok {
		return ErrStaleReference
	}
	top := obj.Top()
	obj.IsFaceUp[top] = !obj.IsFaceUp[top]
	return nil
}

// FlipHandObject toggles every sprite of an object held in playerID's hand.
func (r *Room) FlipHandObject(playerID string, id int) error {
	obj, ok := r.objects[id]
	if !ok || obj.Loc.State != models.InHand || obj.Loc.PlayerID != playerID {
		return ErrStaleReference
	}
	for i := range obj.IsFaceUp {
		obj.IsFaceUp[i] = !obj.IsFaceUp[i]
	}
	return nil
}

// MergeStacks appends the top stack's sprites onto the bottom stack, bottom's sprites first, and
// retires the top stack's id for good.
func (r *Room) MergeStacks(topID, bottomID int) error {
	if topID == bottomID {
		return ErrStaleReference
	}
	top, ok := r.tableObject(topID)
	if !ok {
		return ErrStaleReference
	}
	bottom, ok := r.tableObject(bottomID)
	if !ok {
		return ErrStaleReference
	}
	bottom.Items = append(bottom.Items, top.Items...)
	bottom.IsFaceUp = append(bottom.IsFaceUp, top.IsFaceUp...)
	r.retire(topID)
	r.log.Debugf("merged stack %d into %d (%d sprites)", topID, bottomID, len(bottom.Items))
	return nil
}

// DrawTopSprite splits the topmost sprite off a stack into a new singleton at the same spot.
// The remaining stack keeps its id. Returns the new object's id.
func (r *Room) DrawTopSprite(bottomID int) (int, error) {
	stack, ok := r.tableObject(bottomID)
	if !ok || !stack.IsStack() {
		return 0, ErrStaleReference
	}
	top := stack.Top()
	sprite, faceUp := stack.Items[top], stack.IsFaceUp[top]
	stack.Items = stack.Items[:top]
	stack.IsFaceUp = stack.IsFaceUp[:top]

	id := r.nextObjectID
	r.nextObjectID++
	card := models.NewCard(id, sprite, faceUp, stack.X, stack.Y)
	card.Angle = stack.Angle
	r.depth++
	card.Depth = r.depth
	r.objects[id] = card
	return id, nil
}

// ShuffleStack permutes a table stack's sprites and face flags together, uniformly at random.
func (r *Room) ShuffleStack(id int) error {
	obj, ok := r.tableObject(id)
	if !ok {
		return ErrStaleReference
	}
	r.rng.Shuffle(len(obj.Items), func(i, j int) {
		obj.Items[i], obj.Items[j] = obj.Items[j], obj.Items[i]
		obj.IsFaceUp[i], obj.IsFaceUp[j] = obj.IsFaceUp[j], obj.IsFaceUp[i]
	})
	return nil
}

// retire removes an object id permanently.
func (r *Room) retire(id int) {
	delete(r.objects, id)
	r.clearDragOf(id)
}
