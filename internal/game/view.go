// internal/game/view.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/lastcard/internal/engine"
	"github.com/jason-s-yu/lastcard/internal/models"
)

// View is one player's picture of a game. The opponent's hand and the draw pile are reduced
// to counts; only the viewer's own cards are revealed.
type View struct {
	GameID   uuid.UUID `json:"game_id"`
	Passcode string    `json:"passcode"`
	GameType string    `json:"game_type"`
	Status   string    `json:"status"`
	Version  int       `json:"version"`

	// Seat is the viewer's seat, or -1 for someone who is not playing.
	Seat int `json:"seat"`

	Hand                []engine.Card `json:"hand"`
	HasDeclaredLastCard bool          `json:"has_declared_last_card"`
	OpponentID          string        `json:"opponent_id,omitempty"`
	OpponentHandSize    int           `json:"opponent_hand_size"`
	OpponentDeclared    bool          `json:"opponent_declared_last_card"`

	DrawPileSize     int              `json:"draw_pile_size"`
	DiscardPileSize  int              `json:"discard_pile_size"`
	TopDiscard       *engine.Card     `json:"top_discard,omitempty"`
	ActiveColor      engine.Color     `json:"active_color"`
	ActiveNumber     *int             `json:"active_number,omitempty"`
	PendingDrawCount int              `json:"pending_draw_count"`
	Direction        engine.Direction `json:"direction"`

	CurrentPlayer string `json:"current_player"`
	YourTurn      bool   `json:"your_turn"`
	Winner        string `json:"winner,omitempty"`

	// LegalCardIDs is only filled in on the viewer's own turn.
	LegalCardIDs []string `json:"legal_card_ids,omitempty"`

	// MissedLastCard flags a current player sitting on one card without having declared it.
	MissedLastCard bool `json:"missed_last_card"`
}

// BuildView assembles the view of st for viewerID.
func BuildView(sess *models.GameSession, st engine.GameState, viewerID string) View {
	v := View{
		GameID:           sess.ID,
		Passcode:         sess.Passcode,
		GameType:         sess.GameType,
		Status:           sess.Status,
		Version:          sess.Version,
		Seat:             st.SeatOf(viewerID),
		DrawPileSize:     len(st.DrawPile),
		DiscardPileSize:  len(st.DiscardPile),
		ActiveColor:      st.ActiveColor,
		ActiveNumber:     st.ActiveNumber,
		PendingDrawCount: st.PendingDrawCount,
		Direction:        st.Direction,
		Winner:           sess.Winner,
		MissedLastCard:   engine.MissedLastCardDeclaration(st),
		Hand:             []engine.Card{},
	}
	if top, ok := st.TopDiscard(); ok {
		v.TopDiscard = &top
	}
	if st.TurnIndex >= 0 && st.TurnIndex < len(st.Players) {
		v.CurrentPlayer = st.Players[st.TurnIndex].ID
	}

	if v.Seat < 0 {
		return v
	}
	me := st.Players[v.Seat]
	opp := st.Players[(v.Seat+1)%len(st.Players)]
	v.Hand = append(v.Hand, me.Hand...)
	v.HasDeclaredLastCard = me.HasDeclaredLastCard
	v.OpponentID = opp.ID
	v.OpponentHandSize = len(opp.Hand)
	v.OpponentDeclared = opp.HasDeclaredLastCard

	v.YourTurn = st.Status == engine.StatusActive && sess.Status == models.SessionActive && v.Seat == st.TurnIndex
	if v.YourTurn {
		for _, c := range engine.LegalCards(me.Hand, st.ActiveColor, st.ActiveNumber) {
			v.LegalCardIDs = append(v.LegalCardIDs, c.ID)
		}
	}
	return v
}
