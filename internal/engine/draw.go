// internal/engine/draw.go
package engine

import "fmt"

// DrawCards moves count cards from the draw pile to the current player's hand, clears the
// pending draw penalty and passes the turn. When the draw pile runs out, every discard except
// the top card is shuffled into a new draw pile.
func (e *Engine) DrawCards(s GameState, count int) (GameState, error) {
	if s.Status == StatusFinished {
		return GameState{}, ErrGameFinished
	}
	if count < 1 {
		return GameState{}, fmt.Errorf("%w: got %d", ErrInvalidDrawCount, count)
	}
	if s.TurnIndex < 0 || s.TurnIndex >= len(s.Players) {
		return GameState{}, fmt.Errorf("%w: turn index %d", ErrPlayerIndex, s.TurnIndex)
	}

	next := s
	player := s.Players[s.TurnIndex]
	hand := make([]Card, len(player.Hand), len(player.Hand)+count)
	copy(hand, player.Hand)

	for i := 0; i < count; i++ {
		if len(next.DrawPile) == 0 {
			if err := e.recycleDiscards(&next); err != nil {
				return GameState{}, fmt.Errorf("draw %d of %d: %w", i+1, count, err)
			}
		}
		top := len(next.DrawPile) - 1
		hand = append(hand, next.DrawPile[top])
		next.DrawPile = next.DrawPile[:top]
	}

	player.Hand = hand
	// a declaration only covers the single card it was made for
	player.HasDeclaredLastCard = false
	next.Players = withPlayer(s.Players, s.TurnIndex, player)
	next.PendingDrawCount = 0
	next.TurnIndex = NextPlayerIndex(next)
	return next, nil
}

// recycleDiscards sets the top discard aside, shuffles the rest into a fresh draw pile and
// leaves the set-aside card as the only discard. s must be a state the caller owns.
func (e *Engine) recycleDiscards(s *GameState) error {
	if len(s.DiscardPile) <= 1 {
		return ErrInsufficientCards
	}
	top := s.DiscardPile[len(s.DiscardPile)-1]
	pile, err := Shuffle(e.rng, s.DiscardPile[:len(s.DiscardPile)-1])
	if err != nil {
		return err
	}
	s.DrawPile = pile
	s.DiscardPile = []Card{top}
	return nil
}
