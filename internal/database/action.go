// internal/database/action.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/lastcard/internal/models"
)

// ActionLog appends historian batches to game_actions.
type ActionLog struct {
	DB *pgxpool.Pool
}

func NewActionLog(db *pgxpool.Pool) *ActionLog {
	return &ActionLog{DB: db}
}

// InsertGameActions writes actions in one transaction. Records already stored under the same
// (game, index) are skipped, so a redelivered batch is harmless.
func (l *ActionLog) InsertGameActions(ctx context.Context, actions []models.GameAction) error {
	if len(actions) == 0 {
		return nil
	}
	q := `
		INSERT INTO game_actions (game_id, action_index, actor_id, action_type, payload, acted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id, action_index) DO NOTHING
	`
	err := pgx.BeginTxFunc(ctx, l.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, a := range actions {
			payload, err := json.Marshal(a.Payload)
			if err != nil {
				return fmt.Errorf("marshal payload of %s #%d: %w", a.GameID, a.ActionIndex, err)
			}
			batch.Queue(q, a.GameID, a.ActionIndex, a.ActorID, a.ActionType, payload, time.UnixMilli(a.Timestamp))
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("insert %d game actions: %w", len(actions), err)
	}
	return nil
}

