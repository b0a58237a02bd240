package game

import (
	"context"
	"io"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/lastcard/internal/engine"
	"github.com/jason-s-yu/lastcard/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu      sync.Mutex
	actions []models.GameAction
}

func (p *recordingPublisher) PublishAction(_ context.Context, a models.GameAction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actions = append(p.actions, a)
	return nil
}

func (p *recordingPublisher) last() models.GameAction {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.actions[len(p.actions)-1]
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.actions)
}

type countingNotifier struct {
	mu     sync.Mutex
	counts map[uuid.UUID]int
}

func (n *countingNotifier) GameUpdated(id uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.counts[id]++
}

func (n *countingNotifier) get(id uuid.UUID) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.counts[id]
}

type recordingResults struct {
	mu      sync.Mutex
	results [][2]string
}

func (r *recordingResults) RecordResult(_ context.Context, _ uuid.UUID, winnerID, loserID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, [2]string{winnerID, loserID})
	return nil
}

type fixture struct {
	svc      *Service
	pub      *recordingPublisher
	notifier *countingNotifier
	results  *recordingResults
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		pub:      &recordingPublisher{},
		notifier: &countingNotifier{counts: make(map[uuid.UUID]int)},
		results:  &recordingResults{},
	}
	f.svc = NewService(NewMemoryStore(), logger)
	f.svc.Engine = engine.New(engine.WithRand(rand.New(rand.NewPCG(7, 11))))
	f.svc.Publisher = f.pub
	f.svc.Notifier = f.notifier
	f.svc.Results = f.results
	return f
}

// seed stores st as a game of the given type and status and returns its id.
func (f *fixture) seed(t *testing.T, st engine.GameState, gameType, status string) uuid.UUID {
	t.Helper()
	require.NoError(t, st.Validate())
	text, err := engine.Serialize(st)
	require.NoError(t, err)
	sess := &models.GameSession{
		ID:       uuid.New(),
		Passcode: RandomPasscode(),
		GameType: gameType,
		Status:   status,
		State:    text,
	}
	require.NoError(t, f.svc.Store.CreateSession(context.Background(), sess))
	return sess.ID
}

func (f *fixture) state(t *testing.T, id uuid.UUID) (*models.GameSession, engine.GameState) {
	t.Helper()
	sess, err := f.svc.Store.GetSession(context.Background(), id)
	require.NoError(t, err)
	st, err := engine.Deserialize(sess.State)
	require.NoError(t, err)
	return sess, st
}

// cards deals specific cards out of a full deck so a table can be laid out by hand.
type cards struct {
	t    *testing.T
	left []engine.Card
}

func newCards(t *testing.T) *cards {
	return &cards{t: t, left: engine.BuildDeck()}
}

func (c *cards) take(color engine.Color, kind engine.Kind, value int) engine.Card {
	c.t.Helper()
	for i, card := range c.left {
		if card.Color != color || card.Kind != kind {
			continue
		}
		if n, ok := card.Number(); ok && n != value {
			continue
		}
		c.left = append(c.left[:i:i], c.left[i+1:]...)
		return card
	}
	c.t.Fatalf("no %s %s %d left", color, kind, value)
	return engine.Card{}
}

func (c *cards) num(color engine.Color, value int) engine.Card {
	return c.take(color, engine.KindNumber, value)
}

// table lays out an active game between alice (to move) and bob; the rest of the deck is the
// draw pile.
func (c *cards) table(hand0, hand1, discard []engine.Card) engine.GameState {
	top := discard[len(discard)-1]
	st := engine.GameState{
		DrawPile:    c.left,
		DiscardPile: discard,
		Players: []engine.PlayerState{
			{ID: "alice", Hand: hand0},
			{ID: "bob", Hand: hand1},
		},
		Direction:   engine.Clockwise,
		Status:      engine.StatusActive,
		ActiveColor: top.Color,
	}
	if n, ok := top.Number(); ok {
		st.ActiveNumber = &n
	}
	c.left = nil
	return st
}
