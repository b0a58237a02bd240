// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config gathers every environment-driven setting used by the binaries.
type Config struct {
	Port     string
	LogLevel string

	// AllowedOrigins feeds CORS. Each entry may hold one "*" wildcard; the auth cookie is only
	// sent cross-origin when none does.
	AllowedOrigins []string

	DatabaseURL string

	RedisAddr string
	RedisDB   int

	HistorianQueue      string
	HistorianBatchSize  int
	HistorianFlushDelay time.Duration
	HistorianPoll       time.Duration
	HistorianInactivity time.Duration

	GameLockTTL         time.Duration
	AutoDeclareLastCard bool

	// TokenExpiry of zero issues auth tokens without an exp claim.
	TokenExpiry time.Duration
	// Raw ed25519 key files. When either is empty a key pair is generated at startup.
	PrivateKeyPath string
	PublicKeyPath  string
}

// Load reads the configuration from the environment. Binaries import
// github.com/joho/godotenv/autoload so a local .env file is picked up first.
func Load() Config {
	return Config{
		Port:                GetEnv("PORT", "8080"),
		LogLevel:            GetEnv("LOG_LEVEL", "debug"),
		AllowedOrigins:      GetEnvList("ALLOWED_ORIGINS", []string{"https://*", "http://*"}),
		DatabaseURL:         databaseURL(),
		RedisAddr:           GetEnv("REDIS_ADDR", ""),
		RedisDB:             GetEnvInt("REDIS_DB", 0),
		HistorianQueue:      GetEnv("HISTORIAN_QUEUE_NAME", "lastcard_actions"),
		HistorianBatchSize:  GetEnvInt("HISTORIAN_BATCH_SIZE", 20),
		HistorianFlushDelay: time.Duration(GetEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
		HistorianPoll:       time.Duration(GetEnvInt("HISTORIAN_POLL_SEC", 3)) * time.Second,
		HistorianInactivity: time.Duration(GetEnvInt("GAME_INACTIVITY_TIMEOUT_SEC", 600)) * time.Second,
		GameLockTTL:         time.Duration(GetEnvInt("GAME_LOCK_TTL_MS", 5000)) * time.Millisecond,
		AutoDeclareLastCard: GetEnvBool("AUTO_DECLARE_LAST_CARD", true),
		TokenExpiry:         GetEnvDuration("TOKEN_EXPIRE_TIME", 0),
		PrivateKeyPath:      GetEnv("JWT_PRIVATE_KEY_PATH", ""),
		PublicKeyPath:       GetEnv("JWT_PUBLIC_KEY_PATH", ""),
	}
}

// databaseURL prefers DATABASE_URL and otherwise assembles one from the POSTGRES_/PG_ variables.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		GetEnv("PG_HOST", "localhost"),
		GetEnv("PG_PORT", "5432"),
		os.Getenv("PG_DATABASE"),
	)
}

// GetEnv reads an environment variable or returns a default value.
func GetEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetEnvInt parses an environment variable as an integer, else returns a default value.
func GetEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// GetEnvBool parses an environment variable as a boolean, else returns a default value.
func GetEnvBool(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}

// GetEnvDuration parses an environment variable such as "72h". "never" and "0" mean zero.
// Unparseable values fall back to the default.
func GetEnvDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	switch s {
	case "":
		return def
	case "never", "0":
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// GetEnvList splits a comma-separated environment variable, dropping blanks.
func GetEnvList(key string, def []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
