// internal/engine/deck.go
package engine

import (
	"fmt"
	"math/rand/v2"
)

const (
	// DeckSize is the number of cards in a full deck.
	DeckSize = 108

	numberCardCount = 76
	actionCardCount = 24
	wildCardCount   = 8
)

// Rand is the randomness capability used for shuffling. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// globalRand draws from the process-wide math/rand/v2 source, which is safe for concurrent use.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// BuildDeck enumerates the 108-card deck in a fixed order with sequential ids card_0..card_107.
func BuildDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	next := 0
	nextID := func() string {
		id := fmt.Sprintf("card_%d", next)
		next++
		return id
	}

	// one 0 and two each of 1-9 per color
	for _, color := range SuitColors {
		for num := 0; num <= 9; num++ {
			copies := 2
			if num == 0 {
				copies = 1
			}
			for i := 0; i < copies; i++ {
				deck = append(deck, NewNumberCard(nextID(), color, num))
			}
		}
	}

	for _, color := range SuitColors {
		for _, kind := range []Kind{KindSkip, KindReverse, KindDrawTwo} {
			for i := 0; i < 2; i++ {
				deck = append(deck, NewActionCard(nextID(), color, kind))
			}
		}
	}

	for _, kind := range []Kind{KindWild, KindWildDrawFour} {
		for i := 0; i < 4; i++ {
			deck = append(deck, NewActionCard(nextID(), ColorWild, kind))
		}
	}
	return deck
}

// VerifyComposition checks that cards is exactly one full deck: 108 well-formed cards with
// distinct ids and the expected number, action and wild counts.
func VerifyComposition(cards []Card) error {
	if len(cards) != DeckSize {
		return fmt.Errorf("%w: %d cards, want %d", ErrDeckComposition, len(cards), DeckSize)
	}
	seen := make(map[string]struct{}, len(cards))
	var numbers, actions, wilds int
	for _, c := range cards {
		if err := c.validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrDeckComposition, err)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: duplicate card id %s", ErrDeckComposition, c.ID)
		}
		seen[c.ID] = struct{}{}
		switch {
		case c.Kind == KindNumber:
			numbers++
		case c.Kind.IsWild():
			wilds++
		default:
			actions++
		}
	}
	if numbers != numberCardCount || actions != actionCardCount || wilds != wildCardCount {
		return fmt.Errorf("%w: %d number, %d action, %d wild", ErrDeckComposition, numbers, actions, wilds)
	}
	return nil
}

// Shuffle returns a uniformly random permutation of cards (Fisher-Yates). The input is not modified.
func Shuffle(rng Rand, cards []Card) ([]Card, error) {
	if len(cards) == 0 {
		return nil, ErrEmptyInput
	}
	if rng == nil {
		rng = globalRand{}
	}
	shuffled := make([]Card, len(cards))
	copy(shuffled, cards)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled, nil
}
