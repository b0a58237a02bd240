package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// seeded returns a deterministic randomness source.
func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// picker hands out cards from a full deck so tests can lay out a table by hand while
// keeping all 108 cards accounted for.
type picker struct {
	t    *testing.T
	left []Card
}

func newPicker(t *testing.T) *picker {
	return &picker{t: t, left: BuildDeck()}
}

// take removes the first remaining card matching color, kind and (for number cards) value.
func (p *picker) take(color Color, kind Kind, value int) Card {
	p.t.Helper()
	for i, c := range p.left {
		if c.Color != color || c.Kind != kind {
			continue
		}
		if n, ok := c.Number(); ok && n != value {
			continue
		}
		p.left = append(p.left[:i:i], p.left[i+1:]...)
		return c
	}
	p.t.Fatalf("no %s %s %d left in deck", color, kind, value)
	return Card{}
}

func (p *picker) num(color Color, value int) Card { return p.take(color, KindNumber, value) }
func (p *picker) action(color Color, kind Kind) Card {
	return p.take(color, kind, -1)
}

// rest returns every card not yet taken.
func (p *picker) rest() []Card {
	out := make([]Card, len(p.left))
	copy(out, p.left)
	p.left = nil
	return out
}

// table builds an active state with player 0 to move, taking the active color and number
// from the top of the discard pile.
func table(hand0, hand1, discard, draw []Card) GameState {
	top := discard[len(discard)-1]
	s := GameState{
		DrawPile:    draw,
		DiscardPile: discard,
		Players: []PlayerState{
			{ID: "alice", Hand: hand0},
			{ID: "bob", Hand: hand1},
		},
		TurnIndex:   0,
		Direction:   Clockwise,
		Status:      StatusActive,
		ActiveColor: top.Color,
	}
	if n, ok := top.Number(); ok {
		s.ActiveNumber = intPtr(n)
	}
	return s
}

// requireConserved asserts the 108-card conservation invariant.
func requireConserved(t *testing.T, s GameState) {
	t.Helper()
	all := append([]Card{}, s.DrawPile...)
	all = append(all, s.DiscardPile...)
	for _, p := range s.Players {
		all = append(all, p.Hand...)
	}
	require.NoError(t, VerifyComposition(all))
}

func ids(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}
