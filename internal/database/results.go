// internal/database/results.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/lastcard/internal/rating"
	"github.com/sirupsen/logrus"
)

// ResultStore applies rating changes for finished games.
type ResultStore struct {
	DB     *pgxpool.Pool
	Logger *logrus.Logger
}

func NewResultStore(db *pgxpool.Pool, logger *logrus.Logger) *ResultStore {
	return &ResultStore{DB: db, Logger: logger}
}

// RecordResult updates both players' Elo and logs the change in ratings. Games involving a
// guest or a seat that is not a user id leave ratings untouched.
func (s *ResultStore) RecordResult(ctx context.Context, gameID uuid.UUID, winnerID, loserID string) error {
	winner, err1 := uuid.Parse(winnerID)
	loser, err2 := uuid.Parse(loserID)
	if err1 != nil || err2 != nil {
		s.Logger.Debugf("game %s: no rating update for %s vs %s", gameID, winnerID, loserID)
		return nil
	}

	return pgx.BeginTxFunc(ctx, s.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var done bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ratings WHERE game_id = $1)`, gameID).Scan(&done); err != nil {
			return err
		}
		if done {
			return nil
		}

		rows, err := tx.Query(ctx,
			`SELECT id, elo, is_ephemeral FROM users WHERE id IN ($1, $2) ORDER BY id FOR UPDATE`,
			winner, loser,
		)
		if err != nil {
			return err
		}
		elo := make(map[uuid.UUID]int, 2)
		guest := false
		for rows.Next() {
			var id uuid.UUID
			var r int
			var ephemeral bool
			if err := rows.Scan(&id, &r, &ephemeral); err != nil {
				rows.Close()
				return err
			}
			elo[id] = r
			guest = guest || ephemeral
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(elo) != 2 || guest {
			s.Logger.Debugf("game %s: skipping rating update, guest or unknown player", gameID)
			return nil
		}

		newW, newL := rating.UpdateHeadToHead(elo[winner], elo[loser])
		if _, err := tx.Exec(ctx, `UPDATE users SET elo = $1 WHERE id = $2`, newW, winner); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE users SET elo = $1 WHERE id = $2`, newL, loser); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO ratings (user_id, game_id, old_rating, new_rating)
			VALUES ($1, $2, $3, $4), ($5, $2, $6, $7)
		`, winner, gameID, elo[winner], newW, loser, elo[loser], newL)
		if err != nil {
			return fmt.Errorf("insert rating records: %w", err)
		}
		s.Logger.WithField("game", gameID).Infof("ratings %d->%d, %d->%d", elo[winner], newW, elo[loser], newL)
		return nil
	})
}
