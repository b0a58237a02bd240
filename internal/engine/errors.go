// internal/engine/errors.go
package engine

import "errors"

// Every engine operation either returns a complete new state or one of these errors.
// The input state is never modified in either case.
var (
	// ErrEmptyInput is returned when shuffling an empty sequence.
	ErrEmptyInput = errors.New("cannot shuffle an empty sequence")

	// ErrInsufficientCards is returned when neither the draw pile nor the discard pile can supply a card.
	ErrInsufficientCards = errors.New("not enough cards in draw and discard piles")

	// ErrCardNotFound is returned when the card id is not in the acting player's hand.
	ErrCardNotFound = errors.New("card not found in hand")

	// ErrMissingColorChoice is returned when a wild card is played without naming a color.
	ErrMissingColorChoice = errors.New("wild card requires a color choice")

	// ErrMalformedState is returned when serialized input does not decode to a valid game state.
	ErrMalformedState = errors.New("malformed game state")

	ErrInvalidColorChoice = errors.New("chosen color must be red, yellow, green or blue")
	ErrIllegalPlay        = errors.New("card does not match the active color or number")
	ErrGameFinished       = errors.New("game is already finished")
	ErrInvalidDrawCount   = errors.New("draw count must be at least 1")
	ErrPlayerIndex        = errors.New("player index out of range")
	ErrDeckComposition    = errors.New("deck composition is invalid")
)
