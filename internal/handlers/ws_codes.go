// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Application close codes sent on the game websocket.
const (
	BadSubprotocolError   websocket.StatusCode = 3000 // client did not ask for the "game" subprotocol
	InvalidAuthTokenError websocket.StatusCode = 3001 // missing or invalid auth_token cookie
	InvalidGameIDError    websocket.StatusCode = 3003 // game id malformed or unknown
)
