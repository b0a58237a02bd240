// internal/handlers/game.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/lastcard/internal/engine"
	"github.com/jason-s-yu/lastcard/internal/game"
)

type createGameRequest struct {
	GameType string `json:"game_type"`
}

type joinGameRequest struct {
	Passcode string `json:"passcode"`
}

// moveRequest is the body of play, draw and last-card requests. CardID and Color are only
// read by play.
type moveRequest struct {
	GameID uuid.UUID    `json:"game_id"`
	CardID string       `json:"card_id,omitempty"`
	Color  engine.Color `json:"color,omitempty"`
}

// CreateGameHandler starts a game with the caller in the first seat.
func CreateGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := EnsureEphemeralUser(gs, w, r)
		if err != nil {
			writeError(gs, w, r, err)
			return
		}
		var req createGameRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload"})
			return
		}

		view, err := gs.Games.CreateGame(r.Context(), userID.String(), req.GameType)
		if err != nil {
			writeError(gs, w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, view)
	}
}

// JoinGameHandler seats the caller in a waiting online game.
func JoinGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := EnsureEphemeralUser(gs, w, r)
		if err != nil {
			writeError(gs, w, r, err)
			return
		}
		var req joinGameRequest
		if err := decodeJSON(r, &req); err != nil || req.Passcode == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "passcode is required"})
			return
		}

		view, err := gs.Games.JoinGame(r.Context(), userID.String(), req.Passcode)
		if err != nil {
			writeError(gs, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// moveHandler wraps the boilerplate shared by play, draw and last-card.
func moveHandler(gs *GameServer, apply func(r *http.Request, userID string, req moveRequest) (game.View, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := gs.Sessions.FromRequest(r)
		if err != nil {
			writeError(gs, w, r, err)
			return
		}
		var req moveRequest
		if err := decodeJSON(r, &req); err != nil || req.GameID == uuid.Nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "game_id is required"})
			return
		}

		view, err := apply(r, userID, req)
		if err != nil {
			writeError(gs, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// PlayCardHandler plays a card from the caller's hand. Wild cards need a color.
func PlayCardHandler(gs *GameServer) http.HandlerFunc {
	return moveHandler(gs, func(r *http.Request, userID string, req moveRequest) (game.View, error) {
		return gs.Games.PlayCard(r.Context(), req.GameID, userID, req.CardID, req.Color)
	})
}

// DrawCardHandler draws the pending penalty, or one card.
func DrawCardHandler(gs *GameServer) http.HandlerFunc {
	return moveHandler(gs, func(r *http.Request, userID string, req moveRequest) (game.View, error) {
		return gs.Games.DrawCard(r.Context(), req.GameID, userID)
	})
}

// LastCardHandler declares "last card" for the caller.
func LastCardHandler(gs *GameServer) http.HandlerFunc {
	return moveHandler(gs, func(r *http.Request, userID string, req moveRequest) (game.View, error) {
		return gs.Games.CallLastCard(r.Context(), req.GameID, userID)
	})
}

// GetGameHandler returns the caller's view of /games/{id}.
func GetGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := gs.Sessions.FromRequest(r)
		if err != nil {
			writeError(gs, w, r, err)
			return
		}
		gameID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid game id"})
			return
		}

		view, err := gs.Games.GetGame(r.Context(), gameID, userID)
		if err != nil {
			writeError(gs, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}
