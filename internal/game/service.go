// internal/game/service.go
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/lastcard/internal/engine"
	"github.com/jason-s-yu/lastcard/internal/models"
	"github.com/sirupsen/logrus"
)

// Seat placeholders used before a real second player exists.
const (
	AIPlayerID      = "ai-bot"
	WaitingPlayerID = "waiting"
)

const (
	passcodeLength   = 6
	passcodeAttempts = 5
)

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrNotInGame       = errors.New("player is not seated in this game")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrGameNotActive   = errors.New("game is not active")
	ErrGameFull        = errors.New("game is not accepting players")
	ErrAlreadyInGame   = errors.New("player already seated in this game")
	ErrCannotDeclare   = errors.New("last card can only be declared holding exactly one card")
	ErrInvalidGameType = errors.New("invalid game type")
)

// ActionPublisher hands accepted moves to the historian.
type ActionPublisher interface {
	PublishAction(ctx context.Context, action models.GameAction) error
}

// Notifier is told whenever a game changes.
type Notifier interface {
	GameUpdated(gameID uuid.UUID)
}

// ResultRecorder stores the outcome of a finished online game.
type ResultRecorder interface {
	RecordResult(ctx context.Context, gameID uuid.UUID, winnerID, loserID string) error
}

// Service runs game transitions against a Store. Every mutating call holds the game's lock
// for the whole load, apply, save sequence and saves with the version it loaded.
type Service struct {
	Store     Store
	Locker    Locker
	Publisher ActionPublisher
	Notifier  Notifier
	Results   ResultRecorder
	Engine    *engine.Engine
	Logger    *logrus.Logger

	// NewPasscode generates join codes; replaced in tests.
	NewPasscode func() string
}

// NewService returns a Service with an in-process locker and a default engine. Publisher,
// Notifier and Results are optional.
func NewService(store Store, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		Store:       store,
		Locker:      NewLocalLocker(),
		Engine:      engine.New(),
		Logger:      logger,
		NewPasscode: RandomPasscode,
	}
}

// RandomPasscode returns six random uppercase letters.
func RandomPasscode() string {
	b := make([]byte, passcodeLength)
	for i := range b {
		b[i] = byte('A' + rand.IntN(26))
	}
	return string(b)
}

// CreateGame deals a new game with userID in the first seat. AI games start immediately
// against the placeholder bot; online games wait for a second player to join by passcode.
func (s *Service) CreateGame(ctx context.Context, userID, gameType string) (View, error) {
	second, status := "", ""
	switch gameType {
	case models.GameTypeAI:
		second, status = AIPlayerID, models.SessionActive
	case models.GameTypeOnline:
		second, status = WaitingPlayerID, models.SessionWaiting
	default:
		return View{}, fmt.Errorf("%w: %q", ErrInvalidGameType, gameType)
	}

	st, err := s.Engine.NewGame(userID, second)
	if err != nil {
		return View{}, fmt.Errorf("deal game: %w", err)
	}
	text, err := engine.Serialize(st)
	if err != nil {
		return View{}, err
	}

	sess := &models.GameSession{
		ID:       uuid.New(),
		GameType: gameType,
		Status:   status,
		State:    text,
	}
	for attempt := 1; ; attempt++ {
		sess.Passcode = s.NewPasscode()
		err = s.Store.CreateSession(ctx, sess)
		if err == nil {
			break
		}
		if !errors.Is(err, models.ErrDuplicatePasscode) || attempt == passcodeAttempts {
			return View{}, fmt.Errorf("create session: %w", err)
		}
	}

	s.log(sess.ID, userID, models.ActionCreate).Infof("created %s game %s", gameType, sess.Passcode)
	s.publish(ctx, sess, userID, models.ActionCreate, map[string]interface{}{"game_type": gameType})
	return BuildView(sess, st, userID), nil
}

// JoinGame seats userID as the second player of the waiting game with the given passcode.
func (s *Service) JoinGame(ctx context.Context, userID, passcode string) (View, error) {
	found, err := s.Store.GetSessionByPasscode(ctx, passcode)
	if err != nil {
		return View{}, s.storeErr(err)
	}
	return s.transition(ctx, found.ID, userID, models.ActionJoin, nil,
		func(sess *models.GameSession, st engine.GameState) (engine.GameState, error) {
			if st.SeatOf(userID) >= 0 {
				return engine.GameState{}, ErrAlreadyInGame
			}
			if sess.Status != models.SessionWaiting {
				return engine.GameState{}, ErrGameFull
			}
			next, err := engine.AssignSeat(st, 1, userID)
			if err != nil {
				return engine.GameState{}, err
			}
			sess.Status = models.SessionActive
			return next, nil
		})
}

// PlayCard plays cardID from userID's hand. color is required for wild cards only.
func (s *Service) PlayCard(ctx context.Context, gameID uuid.UUID, userID, cardID string, color engine.Color) (View, error) {
	payload := map[string]interface{}{"card_id": cardID}
	if color != "" {
		payload["color"] = string(color)
	}
	return s.transition(ctx, gameID, userID, models.ActionPlay, payload,
		func(sess *models.GameSession, st engine.GameState) (engine.GameState, error) {
			if err := requireTurn(sess, st, userID); err != nil {
				return engine.GameState{}, err
			}
			return s.Engine.PlayCard(st, cardID, color)
		})
}

// DrawCard draws the pending penalty for userID, or a single card when none is pending,
// and passes the turn.
func (s *Service) DrawCard(ctx context.Context, gameID uuid.UUID, userID string) (View, error) {
	payload := map[string]interface{}{}
	return s.transition(ctx, gameID, userID, models.ActionDraw, payload,
		func(sess *models.GameSession, st engine.GameState) (engine.GameState, error) {
			if err := requireTurn(sess, st, userID); err != nil {
				return engine.GameState{}, err
			}
			count := st.PendingDrawCount
			if count == 0 {
				count = 1
			}
			payload["count"] = count
			return s.Engine.DrawCards(st, count)
		})
}

// CallLastCard records userID's "last card" declaration. It may be called out of turn.
func (s *Service) CallLastCard(ctx context.Context, gameID uuid.UUID, userID string) (View, error) {
	return s.transition(ctx, gameID, userID, models.ActionLastCard, nil,
		func(sess *models.GameSession, st engine.GameState) (engine.GameState, error) {
			if sess.Status != models.SessionActive {
				return engine.GameState{}, ErrGameNotActive
			}
			seat := st.SeatOf(userID)
			if seat < 0 {
				return engine.GameState{}, ErrNotInGame
			}
			if len(st.Players[seat].Hand) != 1 {
				return engine.GameState{}, ErrCannotDeclare
			}
			return engine.DeclareLastCardAt(st, seat)
		})
}

// GetGame returns the game as seen by viewerID.
func (s *Service) GetGame(ctx context.Context, gameID uuid.UUID, viewerID string) (View, error) {
	sess, err := s.Store.GetSession(ctx, gameID)
	if err != nil {
		return View{}, s.storeErr(err)
	}
	st, err := engine.Deserialize(sess.State)
	if err != nil {
		return View{}, fmt.Errorf("game %s: %w", gameID, err)
	}
	return BuildView(sess, st, viewerID), nil
}

func requireTurn(sess *models.GameSession, st engine.GameState, userID string) error {
	if sess.Status != models.SessionActive || st.Status != engine.StatusActive {
		return ErrGameNotActive
	}
	seat := st.SeatOf(userID)
	if seat < 0 {
		return ErrNotInGame
	}
	if seat != st.TurnIndex {
		return ErrNotYourTurn
	}
	return nil
}

type transitionFunc func(sess *models.GameSession, st engine.GameState) (engine.GameState, error)

// transition loads the game under its lock, applies fn and saves the result one version up.
// fn may adjust sess; the session status follows the engine once the game is finished.
func (s *Service) transition(ctx context.Context, gameID uuid.UUID, userID, action string, payload map[string]interface{}, fn transitionFunc) (View, error) {
	unlock, err := s.Locker.Lock(ctx, gameID.String())
	if err != nil {
		return View{}, fmt.Errorf("lock game %s: %w", gameID, err)
	}
	defer unlock()

	sess, err := s.Store.GetSession(ctx, gameID)
	if err != nil {
		return View{}, s.storeErr(err)
	}
	st, err := engine.Deserialize(sess.State)
	if err != nil {
		return View{}, fmt.Errorf("game %s: %w", gameID, err)
	}

	loaded := sess.Version
	next, err := fn(sess, st)
	if err != nil {
		s.log(gameID, userID, action).WithError(err).Debug("rejected")
		return View{}, err
	}
	text, err := engine.Serialize(next)
	if err != nil {
		return View{}, err
	}
	sess.State = text
	sess.Version = loaded + 1
	finished := next.Status == engine.StatusFinished && sess.Status != models.SessionFinished
	if finished {
		sess.Status = models.SessionFinished
		sess.Winner = next.Players[*next.WinnerIndex].ID
	}

	if err := s.Store.UpdateSession(ctx, sess, loaded); err != nil {
		return View{}, s.storeErr(err)
	}

	s.log(gameID, userID, action).WithField("version", sess.Version).Debug("applied")
	s.publish(ctx, sess, userID, action, payload)
	if finished {
		s.finish(ctx, sess, next)
	}
	if s.Notifier != nil {
		s.Notifier.GameUpdated(gameID)
	}
	return BuildView(sess, next, userID), nil
}

// finish records the result of an online game. Failures are logged; the game itself is
// already saved.
func (s *Service) finish(ctx context.Context, sess *models.GameSession, st engine.GameState) {
	winner := *st.WinnerIndex
	loser := st.Players[(winner+1)%len(st.Players)].ID
	s.log(sess.ID, sess.Winner, "finish").Infof("game over, %s beat %s", sess.Winner, loser)
	if sess.GameType != models.GameTypeOnline || s.Results == nil {
		return
	}
	if err := s.Results.RecordResult(ctx, sess.ID, sess.Winner, loser); err != nil {
		s.log(sess.ID, sess.Winner, "finish").WithError(err).Error("failed to record result")
	}
}

func (s *Service) publish(ctx context.Context, sess *models.GameSession, userID, action string, payload map[string]interface{}) {
	if s.Publisher == nil {
		return
	}
	rec := models.GameAction{
		GameID:      sess.ID,
		ActionIndex: sess.Version,
		ActorID:     userID,
		ActionType:  action,
		Payload:     payload,
		Timestamp:   time.Now().UnixMilli(),
	}
	if err := s.Publisher.PublishAction(ctx, rec); err != nil {
		s.log(sess.ID, userID, action).WithError(err).Warn("failed to publish action")
	}
}

func (s *Service) storeErr(err error) error {
	if errors.Is(err, models.ErrSessionNotFound) {
		return fmt.Errorf("%w: %v", ErrGameNotFound, err)
	}
	return err
}

func (s *Service) log(gameID uuid.UUID, userID, action string) *logrus.Entry {
	return s.Logger.WithFields(logrus.Fields{
		"game":   gameID,
		"player": userID,
		"action": action,
	})
}
