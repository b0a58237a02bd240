package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jason-s-yu/lastcard/internal/auth"
	"github.com/jason-s-yu/lastcard/internal/cache"
	"github.com/jason-s-yu/lastcard/internal/database"
	"github.com/jason-s-yu/lastcard/internal/engine"
	"github.com/jason-s-yu/lastcard/internal/game"
	"github.com/jason-s-yu/lastcard/internal/models"
)

// EnsureEphemeralUser returns the caller's user id from the auth cookie. Visitors without a
// valid token get a fresh guest account and a cookie for it.
func EnsureEphemeralUser(gs *GameServer, w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	if sub, err := gs.Sessions.FromRequest(r); err == nil {
		id, parseErr := uuid.Parse(sub)
		if parseErr != nil {
			return uuid.Nil, fmt.Errorf("invalid user ID in token: %w", parseErr)
		}
		return id, nil
	}

	guest := models.User{
		Username:    "Guest",
		IsEphemeral: true,
	}
	if err := gs.Users.CreateUser(r.Context(), &guest); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create ephemeral user: %w", err)
	}
	token, err := gs.Sessions.Issue(guest.ID.String())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create ephemeral JWT: %w", err)
	}
	gs.Sessions.SetCookie(w, token)
	return guest.ID, nil
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps service and engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrGameNotFound),
		errors.Is(err, database.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrNotInGame),
		errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, database.ErrInvalidCredentials),
		errors.Is(err, auth.ErrNoToken):
		return http.StatusForbidden
	case errors.Is(err, game.ErrGameFull),
		errors.Is(err, game.ErrAlreadyInGame),
		errors.Is(err, game.ErrGameNotActive),
		errors.Is(err, models.ErrVersionConflict),
		errors.Is(err, cache.ErrLockHeld),
		errors.Is(err, database.ErrEmailTaken),
		errors.Is(err, engine.ErrGameFinished),
		errors.Is(err, engine.ErrInsufficientCards):
		return http.StatusConflict
	case errors.Is(err, engine.ErrIllegalPlay),
		errors.Is(err, engine.ErrCardNotFound),
		errors.Is(err, engine.ErrMissingColorChoice),
		errors.Is(err, engine.ErrInvalidColorChoice),
		errors.Is(err, game.ErrCannotDeclare),
		errors.Is(err, game.ErrInvalidGameType):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError answers with the mapped status. Server errors are logged and not echoed.
func writeError(gs *GameServer, w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		gs.Logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
