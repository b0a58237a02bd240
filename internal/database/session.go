// internal/database/session.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/lastcard/internal/models"
)

// SessionStore keeps game sessions in the game_sessions table.
type SessionStore struct {
	DB *pgxpool.Pool
}

func NewSessionStore(db *pgxpool.Pool) *SessionStore {
	return &SessionStore{DB: db}
}

const sessionColumns = `id, passcode, game_type, status, state::text, version, winner, created_at, updated_at`

func scanSession(row pgx.Row) (*models.GameSession, error) {
	var s models.GameSession
	err := row.Scan(&s.ID, &s.Passcode, &s.GameType, &s.Status, &s.State, &s.Version, &s.Winner, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (st *SessionStore) CreateSession(ctx context.Context, sess *models.GameSession) error {
	q := `
		INSERT INTO game_sessions (id, passcode, game_type, status, state, version, winner)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := st.DB.QueryRow(ctx, q,
		sess.ID, sess.Passcode, sess.GameType, sess.Status, sess.State, sess.Version, sess.Winner,
	).Scan(&sess.CreatedAt, &sess.UpdatedAt)
	if isUniqueViolation(err) {
		return models.ErrDuplicatePasscode
	}
	if err != nil {
		return fmt.Errorf("failed to insert game session: %w", err)
	}
	return nil
}

func (st *SessionStore) GetSession(ctx context.Context, id uuid.UUID) (*models.GameSession, error) {
	q := `SELECT ` + sessionColumns + ` FROM game_sessions WHERE id = $1`
	return scanSession(st.DB.QueryRow(ctx, q, id))
}

// GetSessionByPasscode returns the newest session using passcode.
func (st *SessionStore) GetSessionByPasscode(ctx context.Context, passcode string) (*models.GameSession, error) {
	q := `SELECT ` + sessionColumns + ` FROM game_sessions WHERE passcode = $1 ORDER BY created_at DESC LIMIT 1`
	return scanSession(st.DB.QueryRow(ctx, q, passcode))
}

// UpdateSession writes sess only if the stored row is still at expectedVersion.
func (st *SessionStore) UpdateSession(ctx context.Context, sess *models.GameSession, expectedVersion int) error {
	q := `
		UPDATE game_sessions
		SET status = $2, state = $3, version = $4, winner = $5, updated_at = NOW()
		WHERE id = $1 AND version = $6
		RETURNING updated_at
	`
	err := st.DB.QueryRow(ctx, q,
		sess.ID, sess.Status, sess.State, sess.Version, sess.Winner, expectedVersion,
	).Scan(&sess.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to update game session: %w", err)
	}

	var exists bool
	if err := st.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM game_sessions WHERE id = $1)`, sess.ID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return models.ErrSessionNotFound
	}
	return models.ErrVersionConflict
}

// MarkAbandoned closes a session that is still waiting or active. It reports whether a row
// was changed.
func (st *SessionStore) MarkAbandoned(ctx context.Context, id uuid.UUID) (bool, error) {
	q := `
		UPDATE game_sessions
		SET status = $2, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status IN ($3, $4)
	`
	tag, err := st.DB.Exec(ctx, q, id, models.SessionAbandoned, models.SessionWaiting, models.SessionActive)
	if err != nil {
		return false, fmt.Errorf("failed to mark game %s abandoned: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
