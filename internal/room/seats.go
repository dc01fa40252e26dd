package room

import (
	"math"

	"github.com/jason-s-yu/tabletop/internal/models"
)

// newSeatTable lays SeatCount seats on a circle around the table centre, 45 degrees apart.
func newSeatTable() []*models.Seat {
	seats := make([]*models.Seat, SeatCount)
	for i := 1; i <= SeatCount; i++ {
		angle := float64(i-1) * 45
		rad := angle * math.Pi / 180
		seats[i-1] = &models.Seat{
			ID:        i,
			Name:      models.SeatOpenName,
			X:         TableCenterX + DistanceFromCenter*math.Sin(rad),
			Y:         TableCenterY + DistanceFromCenter*math.Cos(rad),
			Rotation:  angle,
			Available: true,
		}
	}
	return seats
}

func (r *Room) seat(id int) (*models.Seat, bool) {
	if id < 1 || id > len(r.seats) {
		return nil, false
	}
	return r.seats[id-1], true
}

// Seat returns a copy of seat id. Caller must hold r.Mu.
func (r *Room) Seat(id int) (models.Seat, bool) {
	s, ok := r.seat(id)
	if !ok {
		return models.Seat{}, false
	}
	return *s, true
}

// SeatSnapshot copies the seat table keyed by seat id. Caller must hold r.Mu.
func (r *Room) SeatSnapshot() map[int]models.Seat {
	out := make(map[int]models.Seat, len(r.seats))
	for _, s := range r.seats {
		out[s.ID] = *s
	}
	return out
}

// SelectSeat binds seatID to playerID and moves the player's hand anchor to the seat. A player
// holds at most one seat, so any previous seat is vacated. Caller must hold r.Mu.
func (r *Room) SelectSeat(seatID int, playerID, displayName string, spacing float64) error {
	s, ok := r.seat(seatID)
	if !ok {
		return ErrStaleReference
	}
	p, ok := r.players[playerID]
	if !ok {
		return ErrStaleReference
	}
	if !s.Available && s.Socket != playerID {
		return ErrSeatTaken
	}

	r.vacateSeatsOf(playerID)

	if displayName == "" {
		displayName = p.Name
	}
	s.Socket = playerID
	s.Name = displayName
	s.Available = false

	p.X = s.X
	p.Y = s.Y
	p.PlayerSpacing = spacing

	if h, ok := r.hands[playerID]; ok {
		h.Zone = models.HandZone{X: s.X, Y: s.Y, Angle: spacing}
		r.layoutHand(h)
	}

	r.log.WithField("player", p.Name).Infof("took seat %d", seatID)
	r.broadcastRegistry()
	return nil
}

// vacateSeatsOf resets every seat bound to playerID.
func (r *Room) vacateSeatsOf(playerID string) {
	for _, s := range r.seats {
		if s.Socket == playerID {
			s.Vacate()
		}
	}
}
