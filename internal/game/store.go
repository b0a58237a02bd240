// internal/game/store.go
package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/lastcard/internal/models"
)

// Store persists game sessions. UpdateSession must only succeed when the stored version
// equals expectedVersion, returning models.ErrVersionConflict otherwise.
type Store interface {
	CreateSession(ctx context.Context, sess *models.GameSession) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.GameSession, error)
	GetSessionByPasscode(ctx context.Context, passcode string) (*models.GameSession, error)
	UpdateSession(ctx context.Context, sess *models.GameSession, expectedVersion int) error
}

// MemoryStore keeps sessions in process memory. Sessions are copied in and out so callers
// never share a *GameSession with the store.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]models.GameSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID]models.GameSession),
	}
}

func (s *MemoryStore) CreateSession(_ context.Context, sess *models.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.sessions {
		if existing.Passcode == sess.Passcode && existing.Live() {
			return models.ErrDuplicatePasscode
		}
	}
	now := time.Now()
	sess.CreatedAt, sess.UpdatedAt = now, now
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, id uuid.UUID) (*models.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return &sess, nil
}

// GetSessionByPasscode returns the most recent session using passcode.
func (s *MemoryStore) GetSessionByPasscode(_ context.Context, passcode string) (*models.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *models.GameSession
	for _, sess := range s.sessions {
		if sess.Passcode != passcode {
			continue
		}
		if found == nil || sess.CreatedAt.After(found.CreatedAt) {
			cp := sess
			found = &cp
		}
	}
	if found == nil {
		return nil, models.ErrSessionNotFound
	}
	return found, nil
}

func (s *MemoryStore) UpdateSession(_ context.Context, sess *models.GameSession, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sessions[sess.ID]
	if !ok {
		return models.ErrSessionNotFound
	}
	if cur.Version != expectedVersion {
		return models.ErrVersionConflict
	}
	sess.UpdatedAt = time.Now()
	s.sessions[sess.ID] = *sess
	return nil
}

// DeleteSession drops a session.
func (s *MemoryStore) DeleteSession(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
