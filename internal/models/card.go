package models

// Sprite ids index CardNames. 0 is the card back and 53 the joker, which doubles as the
// placeholder shown for another player's face-up hand cards.
const (
	SpriteBack  = 0
	SpriteJoker = 53
	DeckSize    = 52
)

var CardNames = []string{"back",
	"clubsAce", "clubs2", "clubs3", "clubs4", "clubs5", "clubs6", "clubs7", "clubs8", "clubs9", "clubs10", "clubsJack", "clubsQueen", "clubsKing",
	"diamondsAce", "diamonds2", "diamonds3", "diamonds4", "diamonds5", "diamonds6", "diamonds7", "diamonds8", "diamonds9", "diamonds10", "diamondsJack", "diamondsQueen", "diamondsKing",
	"heartsAce", "hearts2", "hearts3", "hearts4", "hearts5", "hearts6", "hearts7", "hearts8", "hearts9", "hearts10", "heartsJack", "heartsQueen", "heartsKing",
	"spadesAce", "spades2", "spades3", "spades4", "spades5", "spades6", "spades7", "spades8", "spades9", "spades10", "spadesJack", "spadesQueen", "spadesKing",
	"joker",
}

// CardName returns the sprite name for id, or "" when out of range.
func CardName(id int) string {
	if id < 0 || id >= len(CardNames) {
		return ""
	}
	return CardNames[id]
}
