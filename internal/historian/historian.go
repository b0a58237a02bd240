// internal/historian/historian.go pops accepted game actions off the Redis queue and persists
// them to Postgres in batches. It also closes games nobody has touched for a while.
package historian

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/lastcard/internal/models"
	"github.com/sirupsen/logrus"
)

// Queue yields published actions in order. ok is false when nothing arrived within timeout.
type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) (action models.GameAction, ok bool, err error)
}

// Sink stores a batch atomically.
type Sink interface {
	InsertGameActions(ctx context.Context, actions []models.GameAction) error
}

// Reaper closes an idle game, reporting whether it was still open.
type Reaper interface {
	MarkAbandoned(ctx context.Context, gameID uuid.UUID) (bool, error)
}

// Options tune batching and idle detection. Zero values take the defaults.
type Options struct {
	BatchSize  int
	FlushDelay time.Duration
	// PollTimeout bounds one blocking pop. Flushes run on FlushDelay regardless.
	PollTimeout time.Duration

	// Inactivity of zero disables reaping.
	Inactivity    time.Duration
	SweepInterval time.Duration
}

// Service is the historian loop.
type Service struct {
	queue  Queue
	sink   Sink
	reaper Reaper
	opts   Options
	logger *logrus.Logger

	batch []models.GameAction

	lastActivity sync.Map // uuid.UUID -> time.Time
	now          func() time.Time
}

// New returns a historian. reaper may be nil.
func New(queue Queue, sink Sink, reaper Reaper, opts Options, logger *logrus.Logger) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = 500 * time.Millisecond
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 3 * time.Second
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	return &Service{
		queue:  queue,
		sink:   sink,
		reaper: reaper,
		opts:   opts,
		logger: logger,
		batch:  make([]models.GameAction, 0, opts.BatchSize),
		now:    time.Now,
	}
}

// Run consumes the queue until ctx is cancelled, then flushes what it holds. Popping happens
// on its own goroutine so a long blocking pop never delays a timed flush.
func (s *Service) Run(ctx context.Context) {
	if s.reaper != nil && s.opts.Inactivity > 0 {
		go s.inactivityLoop(ctx)
	}
	s.logger.Info("historian started")

	popped := make(chan models.GameAction)
	go s.readLoop(ctx, popped)

	ticker := time.NewTicker(s.opts.FlushDelay)
	defer ticker.Stop()

	for running := true; running; {
		select {
		case <-ctx.Done():
			running = false
		case <-ticker.C:
			s.flush(ctx)
		case action, ok := <-popped:
			if !ok {
				running = false
				break
			}
			s.add(action)
			if len(s.batch) >= s.opts.BatchSize {
				s.flush(ctx)
			}
		}
	}

	// an action popped just before cancellation is still owed to the log
	for action := range popped {
		s.add(action)
	}

	// the run context is gone; give the final flush its own deadline
	final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.flush(final)
	s.logger.Info("historian stopped")
}

// readLoop pops until ctx is done and closes out when it returns.
func (s *Service) readLoop(ctx context.Context, out chan<- models.GameAction) {
	defer close(out)
	for ctx.Err() == nil {
		action, ok, err := s.queue.Pop(ctx, s.opts.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.WithError(err).Error("queue pop failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.opts.FlushDelay):
			}
			continue
		}
		if ok {
			out <- action
		}
	}
}

func (s *Service) add(action models.GameAction) {
	s.lastActivity.Store(action.GameID, s.now())
	s.batch = append(s.batch, action)
}

// flush writes the pending batch. A failed batch is kept and retried on the next flush.
func (s *Service) flush(ctx context.Context) {
	if len(s.batch) == 0 {
		return
	}
	if err := s.sink.InsertGameActions(ctx, s.batch); err != nil {
		s.logger.WithError(err).Errorf("failed to flush %d actions", len(s.batch))
		return
	}
	s.logger.Debugf("flushed %d actions", len(s.batch))
	s.batch = s.batch[:0]
}

func (s *Service) inactivityLoop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep abandons every tracked game idle for longer than Inactivity. Finished games are
// left alone by the reaper.
func (s *Service) sweep(ctx context.Context) {
	now := s.now()
	s.lastActivity.Range(func(key, val interface{}) bool {
		gameID, ok1 := key.(uuid.UUID)
		last, ok2 := val.(time.Time)
		if !ok1 || !ok2 || now.Sub(last) <= s.opts.Inactivity {
			return true
		}
		changed, err := s.reaper.MarkAbandoned(ctx, gameID)
		if err != nil {
			s.logger.WithError(err).WithField("game", gameID).Warn("failed to mark game abandoned")
			return true
		}
		s.lastActivity.Delete(gameID)
		if changed {
			s.logger.WithField("game", gameID).Info("marked game abandoned after inactivity")
		}
		return true
	})
}
