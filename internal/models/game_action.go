package models

import "github.com/google/uuid"

// GameAction records one accepted move. Records are queued for the historian, which
// persists them in order of ActionIndex.
type GameAction struct {
	GameID      uuid.UUID              `json:"game_id"`
	ActionIndex int                    `json:"action_index"`
	ActorID     string                 `json:"actor_id"`
	ActionType  string                 `json:"action_type"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	Timestamp   int64                  `json:"timestamp"` // epoch millis
}

// Action types published by the game service.
const (
	ActionCreate   = "game_create"
	ActionJoin     = "game_join"
	ActionPlay     = "play"
	ActionDraw     = "draw"
	ActionLastCard = "last_card"
)
