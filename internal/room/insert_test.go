package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// row lays n slots for owner along +x at y=0, 50 apart, starting at x=0.
func row(owner string, firstID, n int, angle float64) []HandSlot {
	slots := make([]HandSlot, n)
	for i := 0; i < n; i++ {
		slots[i] = HandSlot{ObjectID: firstID + i, PlayerID: owner, Pos: i, X: float64(i) * 50, Angle: angle}
	}
	return slots
}

func TestFindInsertPos(t *testing.T) {
	hand := row("a", 1, 3, 0) // x = 0, 50, 100

	cases := []struct {
		name  string
		q     InsertQuery
		slots []HandSlot
		owner string
		pos   int
	}{
		{"nothing nearby", InsertQuery{X: 0, Y: 900, Threshold: 500}, hand, "", NoInsertion},
		{"no slots at all", InsertQuery{X: 0, Y: 0, Threshold: 500}, nil, "", NoInsertion},
		{"left of both neighbours", InsertQuery{X: -20, Y: 5, Threshold: 500}, hand, "a", 0},
		{"between two neighbours", InsertQuery{X: 30, Y: 5, Threshold: 500}, hand, "a", 1},
		{"between the last two", InsertQuery{X: 70, Y: 5, Threshold: 500}, hand, "a", 2},
		{"right of both neighbours", InsertQuery{X: 130, Y: 5, Threshold: 500}, hand, "a", 3},
		{"single neighbour, left", InsertQuery{X: 40, Y: 0, Threshold: 15}, hand, "a", 1},
		{"single neighbour, right", InsertQuery{X: 60, Y: 0, Threshold: 15}, hand, "a", 2},
		{"threshold is strict", InsertQuery{X: 0, Y: 15, Threshold: 15}, row("a", 1, 1, 0), "", NoInsertion},
		{"orientation flips left and right", InsertQuery{X: -20, Y: 0, Threshold: 500}, row("a", 1, 1, 180), "a", 1},
		{"owner filter", InsertQuery{X: -20, Y: 0, Threshold: 500, Owner: "b"}, append(row("a", 1, 2, 0), HandSlot{ObjectID: 9, PlayerID: "b", X: 400}), "b", 0},
		{"excluded self", InsertQuery{X: 2, Y: 0, Threshold: 500, Exclude: 1}, hand, "a", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			owner, pos := FindInsertPos(tc.q, tc.slots)
			assert.Equal(t, tc.pos, pos)
			assert.Equal(t, tc.owner, owner)
		})
	}
}

func TestFindInsertPosNeighboursInDifferentHands(t *testing.T) {
	slots := []HandSlot{
		{ObjectID: 1, PlayerID: "a", Pos: 4, X: 0, Y: 0},
		{ObjectID: 2, PlayerID: "b", Pos: 0, X: 30, Y: 0},
	}
	// Nearest is a's slot; b's neighbour is ignored and the single-neighbour rule applies.
	owner, pos := FindInsertPos(InsertQuery{X: 10, Y: 0, Threshold: 500}, slots)
	assert.Equal(t, "a", owner)
	assert.Equal(t, 5, pos)
}
