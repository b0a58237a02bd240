package historian

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/lastcard/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanQueue chan models.GameAction

func (q chanQueue) Pop(ctx context.Context, timeout time.Duration) (models.GameAction, bool, error) {
	select {
	case a := <-q:
		return a, true, nil
	case <-time.After(timeout):
		return models.GameAction{}, false, nil
	case <-ctx.Done():
		return models.GameAction{}, false, ctx.Err()
	}
}

// slowQueue delivers from a channel but otherwise blocks for the whole timeout, like BLPOP.
type slowQueue struct {
	items chan models.GameAction

	mu       sync.Mutex
	timeouts []time.Duration
}

func (q *slowQueue) Pop(ctx context.Context, timeout time.Duration) (models.GameAction, bool, error) {
	q.mu.Lock()
	q.timeouts = append(q.timeouts, timeout)
	q.mu.Unlock()
	return chanQueue(q.items).Pop(ctx, timeout)
}

func (q *slowQueue) seen() []time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]time.Duration(nil), q.timeouts...)
}

type memorySink struct {
	mu      sync.Mutex
	batches [][]models.GameAction
	failing bool
}

func (s *memorySink) InsertGameActions(_ context.Context, actions []models.GameAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errors.New("db down")
	}
	s.batches = append(s.batches, append([]models.GameAction(nil), actions...))
	return nil
}

func (s *memorySink) setFailing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = v
}

func (s *memorySink) stored() []models.GameAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.GameAction
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

func (s *memorySink) batchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

type memoryReaper struct {
	mu        sync.Mutex
	abandoned []uuid.UUID
}

func (r *memoryReaper) MarkAbandoned(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abandoned = append(r.abandoned, id)
	return true, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func actions(gameID uuid.UUID, n int) []models.GameAction {
	out := make([]models.GameAction, n)
	for i := range out {
		out[i] = models.GameAction{GameID: gameID, ActionIndex: i, ActorID: "alice", ActionType: models.ActionDraw}
	}
	return out
}

func TestFlushesFullBatches(t *testing.T) {
	q := make(chanQueue, 10)
	sink := &memorySink{}
	svc := New(q, sink, nil, Options{BatchSize: 3, FlushDelay: time.Hour}, quietLogger())

	id := uuid.New()
	for _, a := range actions(id, 6) {
		q <- a
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return sink.batchCount() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	stored := sink.stored()
	require.Len(t, stored, 6)
	for i, a := range stored {
		assert.Equal(t, i, a.ActionIndex, "order preserved")
	}
}

func TestFlushesOnDelayAndShutdown(t *testing.T) {
	q := make(chanQueue, 10)
	sink := &memorySink{}
	svc := New(q, sink, nil, Options{BatchSize: 100, FlushDelay: 20 * time.Millisecond}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	q <- actions(uuid.New(), 1)[0]
	require.Eventually(t, func() bool { return len(sink.stored()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Len(t, sink.stored(), 1)
}

func TestFailedFlushIsRetried(t *testing.T) {
	sink := &memorySink{failing: true}
	svc := New(make(chanQueue), sink, nil, Options{BatchSize: 2}, quietLogger())
	svc.batch = append(svc.batch, actions(uuid.New(), 2)...)

	svc.flush(context.Background())
	assert.Empty(t, sink.stored())
	assert.Len(t, svc.batch, 2)

	sink.setFailing(false)
	svc.flush(context.Background())
	assert.Len(t, sink.stored(), 2)
	assert.Empty(t, svc.batch)
}

func TestSweepAbandonsIdleGames(t *testing.T) {
	reaper := &memoryReaper{}
	svc := New(make(chanQueue), &memorySink{}, reaper, Options{Inactivity: time.Minute}, quietLogger())

	now := time.Now()
	svc.now = func() time.Time { return now }
	idle, busy := uuid.New(), uuid.New()
	svc.lastActivity.Store(idle, now.Add(-2*time.Minute))
	svc.lastActivity.Store(busy, now.Add(-10*time.Second))

	svc.sweep(context.Background())
	assert.Equal(t, []uuid.UUID{idle}, reaper.abandoned)

	_, tracked := svc.lastActivity.Load(idle)
	assert.False(t, tracked)
	_, tracked = svc.lastActivity.Load(busy)
	assert.True(t, tracked)
}

func TestFlushScheduleIndependentOfPoll(t *testing.T) {
	q := &slowQueue{items: make(chan models.GameAction, 10)}
	sink := &memorySink{}
	svc := New(q, sink, nil, Options{BatchSize: 100, FlushDelay: 20 * time.Millisecond, PollTimeout: 5 * time.Second}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	id := uuid.New()
	q.items <- actions(id, 1)[0]
	// the next pop blocks for seconds; the flush must not wait for it
	require.Eventually(t, func() bool { return len(sink.stored()) == 1 }, 500*time.Millisecond, 5*time.Millisecond)

	q.items <- actions(id, 2)[1]
	require.Eventually(t, func() bool { return len(sink.stored()) == 2 }, 500*time.Millisecond, 5*time.Millisecond)

	cancel()
	<-done
	for _, d := range q.seen() {
		assert.Equal(t, 5*time.Second, d, "pops use the poll timeout, not the flush delay")
	}
}

func TestDefaultPollTimeout(t *testing.T) {
	svc := New(make(chanQueue), &memorySink{}, nil, Options{FlushDelay: 500 * time.Millisecond}, quietLogger())
	assert.Equal(t, 3*time.Second, svc.opts.PollTimeout)
}
