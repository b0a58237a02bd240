// internal/models/game_session.go
package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Game types.
const (
	GameTypeAI     = "ai"
	GameTypeOnline = "online"
)

// Session statuses. A session is "waiting" until an online opponent joins; after that it
// mirrors the engine's own status. The historian marks idle games "abandoned".
const (
	SessionWaiting   = "waiting"
	SessionActive    = "active"
	SessionFinished  = "finished"
	SessionAbandoned = "abandoned"
)

var (
	// ErrSessionNotFound is returned by stores when no session matches.
	ErrSessionNotFound = errors.New("game session not found")

	// ErrVersionConflict is returned when a session was updated by someone else since it was loaded.
	ErrVersionConflict = errors.New("game session was modified concurrently")

	// ErrDuplicatePasscode is returned when a new session reuses a live passcode.
	ErrDuplicatePasscode = errors.New("passcode already in use")
)

// GameSession is the persisted form of one game. State holds the serialized engine state and
// is opaque to everything but the engine; Version increases by one on every accepted move.
type GameSession struct {
	ID        uuid.UUID `json:"id"`
	Passcode  string    `json:"passcode"`
	GameType  string    `json:"game_type"`
	Status    string    `json:"status"`
	State     string    `json:"-"`
	Version   int       `json:"version"`
	Winner    string    `json:"winner,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Live reports whether the session still holds its passcode.
func (s *GameSession) Live() bool {
	return s.Status == SessionWaiting || s.Status == SessionActive
}
