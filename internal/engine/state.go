// internal/engine/state.go
package engine

import "fmt"

// Status is the lifecycle state of a game.
type Status string

const (
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// Direction is the sign applied when advancing the turn index.
type Direction int

const (
	Clockwise        Direction = 1
	CounterClockwise Direction = -1
)

// PlayerCount is fixed for this game.
const PlayerCount = 2

// HandSize is the number of cards dealt to each player.
const HandSize = 7

// PlayerState is one seat at the table.
type PlayerState struct {
	ID                  string `json:"id"`
	Hand                []Card `json:"hand"`
	HasDeclaredLastCard bool   `json:"hasDeclaredLastCard"`
}

// GameState is the complete state of one game. Transitions never modify a GameState in
// place; they return a new value that shares every slice they did not change.
type GameState struct {
	DrawPile         []Card        `json:"drawPile"`    // top is the last element
	DiscardPile      []Card        `json:"discardPile"` // top is the last element
	Players          []PlayerState `json:"players"`
	TurnIndex        int           `json:"turnIndex"`
	Direction        Direction     `json:"direction"`
	PendingDrawCount int           `json:"pendingDrawCount"`
	Status           Status        `json:"status"`
	ActiveColor      Color         `json:"activeColor,omitempty"`
	ActiveNumber     *int          `json:"activeNumber,omitempty"`
	WinnerIndex      *int          `json:"winnerIndex,omitempty"`
}

// CurrentPlayer returns the player whose turn it is.
func (s GameState) CurrentPlayer() PlayerState {
	return s.Players[s.TurnIndex]
}

// TopDiscard returns the most recently played card.
func (s GameState) TopDiscard() (Card, bool) {
	if len(s.DiscardPile) == 0 {
		return Card{}, false
	}
	return s.DiscardPile[len(s.DiscardPile)-1], true
}

// CardCount is the number of cards across both piles and all hands.
func (s GameState) CardCount() int {
	n := len(s.DrawPile) + len(s.DiscardPile)
	for _, p := range s.Players {
		n += len(p.Hand)
	}
	return n
}

// SeatOf returns the seat index of the given player id, or -1.
func (s GameState) SeatOf(playerID string) int {
	for i, p := range s.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// Validate checks the structural invariants of a stable (post-initialization) state.
func (s GameState) Validate() error {
	if len(s.Players) != PlayerCount {
		return fmt.Errorf("expected %d players, got %d", PlayerCount, len(s.Players))
	}
	if s.TurnIndex < 0 || s.TurnIndex >= len(s.Players) {
		return fmt.Errorf("turn index %d out of range", s.TurnIndex)
	}
	if s.Direction != Clockwise && s.Direction != CounterClockwise {
		return fmt.Errorf("invalid direction %d", s.Direction)
	}
	if s.PendingDrawCount < 0 {
		return fmt.Errorf("negative pending draw count %d", s.PendingDrawCount)
	}
	if len(s.DiscardPile) == 0 {
		return fmt.Errorf("discard pile is empty")
	}
	if !s.ActiveColor.IsSuit() {
		return fmt.Errorf("invalid active color %q", s.ActiveColor)
	}
	if s.ActiveNumber != nil && (*s.ActiveNumber < 0 || *s.ActiveNumber > 9) {
		return fmt.Errorf("invalid active number %d", *s.ActiveNumber)
	}
	if err := s.checkActive(); err != nil {
		return err
	}

	all := make([]Card, 0, s.CardCount())
	all = append(all, s.DrawPile...)
	all = append(all, s.DiscardPile...)
	emptyHand := -1
	for i, p := range s.Players {
		if p.ID == "" {
			return fmt.Errorf("player %d has empty id", i)
		}
		if len(p.Hand) == 0 && emptyHand == -1 {
			emptyHand = i
		}
		all = append(all, p.Hand...)
	}
	if err := VerifyComposition(all); err != nil {
		return err
	}

	switch s.Status {
	case StatusActive:
		if s.WinnerIndex != nil {
			return fmt.Errorf("active game has a winner")
		}
		if emptyHand != -1 {
			return fmt.Errorf("active game has player %d with an empty hand", emptyHand)
		}
	case StatusFinished:
		if s.WinnerIndex == nil {
			return fmt.Errorf("finished game has no winner")
		}
		if *s.WinnerIndex != emptyHand {
			return fmt.Errorf("winner %d does not hold an empty hand", *s.WinnerIndex)
		}
	default:
		return fmt.Errorf("invalid status %q", s.Status)
	}
	return nil
}

// checkActive ties the active color and number to the top discard. A number card sets both,
// any other suited card sets only its color, and a wild leaves the chosen color with no number.
func (s GameState) checkActive() error {
	top := s.DiscardPile[len(s.DiscardPile)-1]
	n, isNumber := top.Number()
	switch {
	case top.Kind.IsWild():
		if s.ActiveNumber != nil {
			return fmt.Errorf("active number %d set over %s", *s.ActiveNumber, top.Kind)
		}
	case s.ActiveColor != top.Color:
		return fmt.Errorf("active color %q does not match top discard %s", s.ActiveColor, top)
	case isNumber && (s.ActiveNumber == nil || *s.ActiveNumber != n):
		return fmt.Errorf("active number does not match top discard %s", top)
	case !isNumber && s.ActiveNumber != nil:
		return fmt.Errorf("active number %d set over %s", *s.ActiveNumber, top.Kind)
	}
	return nil
}

// withCard returns a new slice holding cards followed by c. It never writes into the
// backing array of cards, which may be shared with other states.
func withCard(cards []Card, c Card) []Card {
	out := make([]Card, len(cards), len(cards)+1)
	copy(out, cards)
	return append(out, c)
}

// withoutCard returns a new slice holding cards minus the element at idx.
func withoutCard(cards []Card, idx int) []Card {
	out := make([]Card, 0, len(cards)-1)
	out = append(out, cards[:idx]...)
	return append(out, cards[idx+1:]...)
}

// withPlayer returns a copy of players with seat idx replaced by p.
func withPlayer(players []PlayerState, idx int, p PlayerState) []PlayerState {
	out := make([]PlayerState, len(players))
	copy(out, players)
	out[idx] = p
	return out
}

func intPtr(v int) *int { return &v }
