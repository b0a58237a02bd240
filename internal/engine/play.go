// internal/engine/play.go
package engine

import "fmt"

// IsPlayable reports whether card may be played on top of the given active color and number.
// Wild cards are always playable; anything else must match the color, or be a number card
// matching the number.
func IsPlayable(card Card, activeColor Color, activeNumber *int) bool {
	if card.Kind.IsWild() {
		return true
	}
	if card.Color == activeColor {
		return true
	}
	if n, ok := card.Number(); ok && activeNumber != nil {
		return n == *activeNumber
	}
	return false
}

// LegalCards filters hand down to the cards IsPlayable accepts, preserving order.
func LegalCards(hand []Card, activeColor Color, activeNumber *int) []Card {
	legal := make([]Card, 0, len(hand))
	for _, c := range hand {
		if IsPlayable(c, activeColor, activeNumber) {
			legal = append(legal, c)
		}
	}
	return legal
}

// effect is what a card kind does to the turn order and the draw penalty once played.
type effect struct {
	pendingDraw int
	skip        bool
	reverse     bool
}

var cardEffects = map[Kind]effect{
	KindNumber:       {},
	KindSkip:         {skip: true},
	KindReverse:      {reverse: true},
	KindDrawTwo:      {pendingDraw: 2},
	KindWild:         {},
	KindWildDrawFour: {pendingDraw: 4},
}

// apply updates the penalty, direction and turn of s, which must be a state the caller owns.
// The turn always moves one seat; skip moves it one more. With two players a reverse acts
// as a skip, so both hand the turn back to whoever played the card.
func (eff effect) apply(s *GameState) {
	s.PendingDrawCount += eff.pendingDraw
	seats := 1
	if eff.reverse {
		s.Direction = -s.Direction
		if len(s.Players) == 2 {
			seats = 2
		}
	}
	if eff.skip {
		seats = 2
	}
	for i := 0; i < seats; i++ {
		s.TurnIndex = NextPlayerIndex(*s)
	}
}

// PlayCard plays cardID from the current player's hand. chosenColor is required for wild
// cards and ignored otherwise; pass "" when there is no choice.
func (e *Engine) PlayCard(s GameState, cardID string, chosenColor Color) (GameState, error) {
	if s.Status == StatusFinished {
		return GameState{}, ErrGameFinished
	}
	if s.TurnIndex < 0 || s.TurnIndex >= len(s.Players) {
		return GameState{}, fmt.Errorf("%w: turn index %d", ErrPlayerIndex, s.TurnIndex)
	}

	player := s.Players[s.TurnIndex]
	idx := indexOfCard(player.Hand, cardID)
	if idx == -1 {
		return GameState{}, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	card := player.Hand[idx]
	if !IsPlayable(card, s.ActiveColor, s.ActiveNumber) {
		return GameState{}, fmt.Errorf("%w: %s on %s", ErrIllegalPlay, card, s.ActiveColor)
	}
	if card.Kind.IsWild() {
		if chosenColor == "" {
			return GameState{}, ErrMissingColorChoice
		}
		if !chosenColor.IsSuit() {
			return GameState{}, fmt.Errorf("%w: %q", ErrInvalidColorChoice, chosenColor)
		}
	}

	next := s
	player.Hand = withoutCard(player.Hand, idx)
	next.DiscardPile = withCard(s.DiscardPile, card)

	if card.Kind.IsWild() {
		next.ActiveColor = chosenColor
		next.ActiveNumber = nil
	} else {
		next.ActiveColor = card.Color
		next.ActiveNumber = nil
		if n, ok := card.Number(); ok {
			next.ActiveNumber = intPtr(n)
		}
	}

	finished := false
	switch len(player.Hand) {
	case 1:
		if e.rules.AutoDeclareLastCard {
			player.HasDeclaredLastCard = true
		}
	case 0:
		finished = true
	}
	next.Players = withPlayer(s.Players, s.TurnIndex, player)

	if finished {
		next.Status = StatusFinished
		next.WinnerIndex = intPtr(s.TurnIndex)
		return next, nil
	}

	cardEffects[card.Kind].apply(&next)
	return next, nil
}

func indexOfCard(cards []Card, id string) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}
