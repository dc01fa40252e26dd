// internal/models/options.go
package models

// Options is the room-wide option set, re-broadcast on the slow tick.
type Options struct {
	// LockedHands allows only the owning player to take objects out of a hand.
	LockedHands bool `json:"lockedHands"`

	// FlipWhenExitHand turns objects face down when they leave a hand for the table.
	FlipWhenExitHand bool `json:"flipWhenExitHand"`

	// ReturnHandOnLeave puts a departing player's hand back on the table instead of destroying it.
	ReturnHandOnLeave bool `json:"returnHandOnLeave"`

	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// DefaultOptions returns the options a fresh room starts with.
func DefaultOptions() Options {
	return Options{
		LockedHands:      true,
		FlipWhenExitHand: false,
	}
}
