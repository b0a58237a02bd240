package models

import "github.com/google/uuid"

type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Password string    `json:"password,omitempty"`
	Username string    `json:"username"`

	IsEphemeral bool `json:"is_ephemeral"`
	IsAdmin     bool `json:"is_admin"`

	// Elo is the head-to-head rating, updated after finished online games.
	Elo int `json:"elo"`
}

// DefaultElo is the rating assigned to new users.
const DefaultElo = 1500
