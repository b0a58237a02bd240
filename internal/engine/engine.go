// internal/engine/engine.go
package engine

import "fmt"

// Rules holds the configurable rule variants.
type Rules struct {
	// AutoDeclareLastCard marks a player as having declared "last card" automatically
	// when a play leaves them holding a single card.
	AutoDeclareLastCard bool `json:"autoDeclareLastCard"`
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{AutoDeclareLastCard: true}
}

// Engine applies game transitions. It keeps no game state between calls; the only things it
// holds are the rule set and the randomness source used for shuffling.
type Engine struct {
	rules Rules
	rng   Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the randomness source. Tests pass a seeded source for reproducible deals.
func WithRand(r Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithRules overrides the default rule set.
func WithRules(r Rules) Option {
	return func(e *Engine) { e.rules = r }
}

// New returns an Engine with default rules and the process-wide random source.
func New(opts ...Option) *Engine {
	e := &Engine{rules: DefaultRules(), rng: globalRand{}}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = globalRand{}
	}
	return e
}

// Rules returns the engine's rule set.
func (e *Engine) Rules() Rules { return e.rules }

// NewGame shuffles a fresh deck, deals HandSize cards to each player and turns over a number
// card as the opening discard.
func (e *Engine) NewGame(player1ID, player2ID string) (GameState, error) {
	deck := BuildDeck()
	if err := VerifyComposition(deck); err != nil {
		return GameState{}, err
	}
	deck, err := Shuffle(e.rng, deck)
	if err != nil {
		return GameState{}, err
	}

	players := []PlayerState{
		{ID: player1ID, Hand: make([]Card, 0, HandSize)},
		{ID: player2ID, Hand: make([]Card, 0, HandSize)},
	}
	for i := range players {
		for n := 0; n < HandSize; n++ {
			players[i].Hand = append(players[i].Hand, deck[len(deck)-1])
			deck = deck[:len(deck)-1]
		}
	}

	// The 76 number cards guaranteed by VerifyComposition bound this loop in practice.
	opening := deck[len(deck)-1]
	deck = deck[:len(deck)-1]
	for opening.Kind != KindNumber {
		deck, err = Shuffle(e.rng, withCard(deck, opening))
		if err != nil {
			return GameState{}, fmt.Errorf("reshuffle for opening card: %w", err)
		}
		opening = deck[len(deck)-1]
		deck = deck[:len(deck)-1]
	}

	num, _ := opening.Number()
	return GameState{
		DrawPile:         deck,
		DiscardPile:      []Card{opening},
		Players:          players,
		TurnIndex:        0,
		Direction:        Clockwise,
		PendingDrawCount: 0,
		Status:           StatusActive,
		ActiveColor:      opening.Color,
		ActiveNumber:     intPtr(num),
	}, nil
}
