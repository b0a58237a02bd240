// cmd/historian/main.go is the asynchronous historian. It pops game actions off the Redis
// queue and persists them to PostgreSQL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/lastcard/internal/cache"
	"github.com/jason-s-yu/lastcard/internal/config"
	"github.com/jason-s-yu/lastcard/internal/database"
	"github.com/jason-s-yu/lastcard/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

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

	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb, err := cache.Connect(ctx, addr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	svc := historian.New(
		cache.NewActionQueue(rdb, cfg.HistorianQueue),
		database.NewActionLog(pool),
		database.NewSessionStore(pool),
		historian.Options{
			BatchSize:   cfg.HistorianBatchSize,
			FlushDelay:  cfg.HistorianFlushDelay,
			PollTimeout: cfg.HistorianPoll,
			Inactivity:  cfg.HistorianInactivity,
		},
		logger,
	)
	svc.Run(ctx)
	logger.Info("Historian shutdown complete.")
}
