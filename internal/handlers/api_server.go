// internal/handlers/api_server.go
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/jason-s-yu/lastcard/internal/auth"
	"github.com/jason-s-yu/lastcard/internal/game"
	"github.com/jason-s-yu/lastcard/internal/middleware"
	"github.com/jason-s-yu/lastcard/internal/models"
	"github.com/sirupsen/logrus"
)

// UserStore is the subset of user persistence the handlers need.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (*models.User, error)
}

// GameServer holds everything the HTTP and websocket handlers share.
type GameServer struct {
	Games    *game.Service
	Hub      *game.Hub
	Users    UserStore
	Sessions *auth.Sessions
	Logger   *logrus.Logger
}

func NewGameServer(games *game.Service, hub *game.Hub, users UserStore, sessions *auth.Sessions, logger *logrus.Logger) *GameServer {
	return &GameServer{
		Games:    games,
		Hub:      hub,
		Users:    users,
		Sessions: sessions,
		Logger:   logger,
	}
}

// NewRouter registers every route behind the request logger, panic recovery and CORS.
// Cross-origin requests carry the auth cookie only when every allowed origin is spelled out.
func NewRouter(gs *GameServer, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.LogMiddleware(gs.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: explicitOrigins(allowedOrigins),
		MaxAge:           300,
	}))

	r.Route("/user", func(r chi.Router) {
		r.Post("/create", CreateUserHandler(gs))
		r.Post("/login", LoginHandler(gs))
	})

	r.Route("/games", func(r chi.Router) {
		r.Post("/create", CreateGameHandler(gs))
		r.Post("/join", JoinGameHandler(gs))
		r.Post("/play", PlayCardHandler(gs))
		r.Post("/draw", DrawCardHandler(gs))
		r.Post("/last-card", LastCardHandler(gs))
		r.Get("/{id}", GetGameHandler(gs))
	})

	r.Get("/game/ws/{id}", GameWSHandler(gs))
	return r
}

func explicitOrigins(origins []string) bool {
	if len(origins) == 0 {
		return false
	}
	for _, o := range origins {
		if strings.Contains(o, "*") {
			return false
		}
	}
	return true
}
