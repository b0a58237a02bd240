// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/lastcard/internal/engine"
	"github.com/jason-s-yu/lastcard/internal/game"
	"github.com/jason-s-yu/lastcard/internal/middleware"
	"golang.org/x/time/rate"
)

const wsWriteTimeout = 5 * time.Second

// Each connection may send a burst of 10 moves, refilled at one per 100ms.
const (
	wsMoveInterval = 100 * time.Millisecond
	wsMoveBurst    = 10
)

// Outgoing websocket message types.
const (
	msgGameState = "game_state"
	msgError     = "error"
)

// GameMessage is a move sent by a client over the game websocket.
type GameMessage struct {
	Type   string       `json:"type"` // "play", "draw" or "last_card"
	CardID string       `json:"card_id,omitempty"`
	Color  engine.Color `json:"color,omitempty"`
}

type wsOutgoing struct {
	Type  string     `json:"type"`
	State *game.View `json:"state,omitempty"`
	Error string     `json:"error,omitempty"`
}

// GameWSHandler streams the caller's view of /game/ws/{id} after every change and accepts moves
// on the same connection. Spectators receive views without hands.
func GameWSHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, authErr := gs.Sessions.FromRequest(r)
		gameID, idErr := uuid.Parse(chi.URLParam(r, "id"))

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			gs.Logger.Warnf("websocket accept error for game %s: %v", chi.URLParam(r, "id"), err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "unexpected handler exit")

		if c.Subprotocol() != "game" {
			c.Close(BadSubprotocolError, "client must use the 'game' subprotocol")
			return
		}
		if authErr != nil {
			c.Close(InvalidAuthTokenError, "missing or invalid auth token")
			return
		}
		if idErr != nil {
			c.Close(InvalidGameIDError, "invalid game id")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		updates, unsubscribe := gs.Hub.Subscribe(gameID)
		defer unsubscribe()

		if err := sendView(ctx, gs, c, gameID, userID); err != nil {
			if errors.Is(err, game.ErrGameNotFound) {
				c.Close(InvalidGameIDError, "game not found")
			}
			return
		}
		middleware.LogWebSocketConnect(gs.Logger, r.RemoteAddr, r.URL.Path)

		go func() {
			defer cancel()
			for {
				select {
				case <-ctx.Done():
					return
				case <-updates:
					if err := sendView(ctx, gs, c, gameID, userID); err != nil {
						return
					}
				}
			}
		}()

		err = readGameMessages(ctx, gs, c, gameID, userID)
		middleware.LogWebSocketDisconnect(gs.Logger, r.RemoteAddr, r.URL.Path, err)
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readGameMessages applies moves until the client goes away. Rejected moves are answered with
// an error message; accepted ones reach every subscriber through the hub.
func readGameMessages(ctx context.Context, gs *GameServer, c *websocket.Conn, gameID uuid.UUID, userID string) error {
	l := rate.NewLimiter(rate.Every(wsMoveInterval), wsMoveBurst)
	for {
		if err := l.Wait(ctx); err != nil {
			return nil
		}
		var msg GameMessage
		if err := wsjson.Read(ctx, c, &msg); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || ctx.Err() != nil {
				return nil
			}
			return err
		}

		var err error
		switch msg.Type {
		case "play":
			_, err = gs.Games.PlayCard(ctx, gameID, userID, msg.CardID, msg.Color)
		case "draw":
			_, err = gs.Games.DrawCard(ctx, gameID, userID)
		case "last_card":
			_, err = gs.Games.CallLastCard(ctx, gameID, userID)
		default:
			err = errors.New("unknown message type " + msg.Type)
		}
		if err != nil {
			send(ctx, gs, c, wsOutgoing{Type: msgError, Error: err.Error()})
		}
	}
}

func sendView(ctx context.Context, gs *GameServer, c *websocket.Conn, gameID uuid.UUID, userID string) error {
	view, err := gs.Games.GetGame(ctx, gameID, userID)
	if err != nil {
		return err
	}
	return send(ctx, gs, c, wsOutgoing{Type: msgGameState, State: &view})
}

func send(ctx context.Context, gs *GameServer, c *websocket.Conn, msg wsOutgoing) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	if err := wsjson.Write(ctx, c, msg); err != nil {
		gs.Logger.Debugf("websocket write failed: %v", err)
		return err
	}
	return nil
}
