package handlers

import (
	"net/http"

	"github.com/jason-s-yu/lastcard/internal/models"
)

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// CreateUserHandler registers a permanent account.
func CreateUserHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload"})
			return
		}
		if req.Email == "" || req.Password == "" || req.Username == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email, password and username are required"})
			return
		}

		user := models.User{
			Email:    req.Email,
			Password: req.Password,
			Username: req.Username,
		}
		if err := gs.Users.CreateUser(r.Context(), &user); err != nil {
			writeError(gs, w, r, err)
			return
		}
		user.Password = ""
		writeJSON(w, http.StatusCreated, user)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// LoginHandler checks credentials and returns a token, also set as the auth_token cookie.
//
// Request payload:
//
//	{
//	  "email": "someone@example.com",
//	  "password": "password"
//	}
//
// Response payload:
//
//	{
//	  "token": "{jwt}"
//	}
func LoginHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request payload"})
			return
		}

		user, err := gs.Users.AuthenticateUser(r.Context(), req.Email, req.Password)
		if err != nil {
			gs.Logger.Debugf("failed to authenticate %s: %v", req.Email, err)
			writeError(gs, w, r, err)
			return
		}
		token, err := gs.Sessions.Issue(user.ID.String())
		if err != nil {
			writeError(gs, w, r, err)
			return
		}

		gs.Sessions.SetCookie(w, token)
		writeJSON(w, http.StatusOK, loginResponse{Token: token})
	}
}
