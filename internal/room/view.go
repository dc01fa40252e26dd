// internal/room/view.go
package room

import (
	"sort"

	"github.com/jason-s-yu/tabletop/internal/models"
)

// VisibleSprite applies the hand privacy rule: a face-up sprite held in a hand is shown as the
// joker placeholder to everyone but the hand's owner. The stored flag is never touched.
func VisibleSprite(sprite int, faceUp bool, viewer, owner string) int {
	if faceUp && viewer != owner {
		return models.SpriteJoker
	}
	return sprite
}

// HandCardView is one hand object from a particular viewer's perspective.
type HandCardView struct {
	ObjectID int     `json:"objectId"`
	Pos      int     `json:"pos"`
	Items    []int   `json:"items"`
	IsFaceUp []bool  `json:"isFaceUp"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Angle    float64 `json:"angle"`
}

// PlayerView is a roster entry sent in currentPlayers and nameChange.
type PlayerView struct {
	models.Player
	Hand     []HandCardView  `json:"hand"`
	HandZone models.HandZone `json:"handZone"`
}

// RosterFor builds the roster as viewer is allowed to see it. Caller must hold r.Mu.
func (r *Room) RosterFor(viewer string) map[string]PlayerView {
	out := make(map[string]PlayerView, len(r.players))
	for id, p := range r.players {
		pv := PlayerView{Player: *p, Hand: []HandCardView{}}
		if h, ok := r.hands[id]; ok {
			pv.HandZone = h.Zone
			for pos, objID := range h.Objects {
				obj, ok := r.objects[objID]
				if !ok {
					continue
				}
				items := make([]int, len(obj.Items))
				for i, sprite := range obj.Items {
					items[i] = VisibleSprite(sprite, obj.IsFaceUp[i], viewer, id)
				}
				pv.Hand = append(pv.Hand, HandCardView{
					ObjectID: objID,
					Pos:      pos,
					Items:    items,
					IsFaceUp: append([]bool(nil), obj.IsFaceUp...),
					X:        obj.X,
					Y:        obj.Y,
					Angle:    obj.Angle,
				})
			}
		}
		out[id] = pv
	}
	return out
}

// ObjectSnapshot copies every object on the table, keyed by id. Hand contents are private and
// travel in the roster instead. Caller must hold r.Mu.
func (r *Room) ObjectSnapshot() map[int]models.TableObject {
	out := make(map[int]models.TableObject, len(r.objects))
	for id, obj := range r.objects {
		if !obj.OnTable() {
			continue
		}
		cp := *obj
		cp.Items = append([]int(nil), obj.Items...)
		cp.IsFaceUp = append([]bool(nil), obj.IsFaceUp...)
		out[id] = cp
	}
	return out
}

// ObjectIDs lists every live object id in ascending order. Caller must hold r.Mu.
func (r *Room) ObjectIDs() []int {
	ids := make([]int, 0, len(r.objects))
	for id := range r.objects {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// CursorSnapshot copies the ghost cursors of everyone still connected. Caller must hold r.Mu.
func (r *Room) CursorSnapshot() map[string]models.CursorInfo {
	out := make(map[string]models.CursorInfo, len(r.cursorInfo))
	for id, c := range r.cursorInfo {
		out[id] = c
	}
	return out
}
