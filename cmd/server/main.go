// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/lastcard/internal/auth"
	"github.com/jason-s-yu/lastcard/internal/cache"
	"github.com/jason-s-yu/lastcard/internal/config"
	"github.com/jason-s-yu/lastcard/internal/database"
	"github.com/jason-s-yu/lastcard/internal/engine"
	"github.com/jason-s-yu/lastcard/internal/game"
	"github.com/jason-s-yu/lastcard/internal/handlers"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		logger.Fatalf("database: %v", err)
	}

	// Without key files every restart signs out existing users.
	var sessions *auth.Sessions
	if cfg.PrivateKeyPath != "" && cfg.PublicKeyPath != "" {
		sessions, err = auth.NewSessionsFromPath(cfg.PrivateKeyPath, cfg.PublicKeyPath, cfg.TokenExpiry)
	} else {
		sessions, err = auth.NewSessions(cfg.TokenExpiry)
	}
	if err != nil {
		logger.Fatalf("auth: %v", err)
	}

	hub := game.NewHub()
	svc := game.NewService(database.NewSessionStore(pool), logger)
	svc.Engine = engine.New(engine.WithRules(engine.Rules{AutoDeclareLastCard: cfg.AutoDeclareLastCard}))
	svc.Notifier = hub
	svc.Results = database.NewResultStore(pool, logger)

	// With Redis the lock is shared between server processes and moves reach the historian.
	// Without it, one process owns every game and nothing is recorded.
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		svc.Locker = cache.NewRedisLocker(rdb, "lastcard:lock", cfg.GameLockTTL)
		svc.Publisher = cache.NewActionQueue(rdb, cfg.HistorianQueue)
	} else {
		logger.Warn("REDIS_ADDR not set, using in-process locks and no action history")
	}

	gs := handlers.NewGameServer(svc, hub, database.NewUserStore(pool), sessions, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(gs, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("Running on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
}
