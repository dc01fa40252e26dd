package models

import "encoding/json"

// SeatOpenName is the display name of an unoccupied seat.
const SeatOpenName = "Open"

// Seat is one fixed position around the table. Seats are created with the room and only
// ever reset, never removed.
type Seat struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Rotation  float64 `json:"rotation"`
	Available bool    `json:"available"`

	// Socket is the bound connection id, empty when the seat is open.
	Socket string `json:"-"`
}

// Vacate resets the seat to its open state.
func (s *Seat) Vacate() {
	s.Name = SeatOpenName
	s.Available = true
	s.Socket = ""
}

// MarshalJSON writes an open seat's socket as 0, the sentinel clients expect.
func (s Seat) MarshalJSON() ([]byte, error) {
	type seatAlias Seat
	var socket interface{} = 0
	if s.Socket != "" {
		socket = s.Socket
	}
	return json.Marshal(struct {
		seatAlias
		Socket interface{} `json:"socket"`
	}{seatAlias(s), socket})
}
