package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/vytor/matchflash/internal/values"
)

const devTokenSecret = "matchflash-dev-secret"

type Config struct {
	Addr              string
	DBPath            string
	LogLevel          string
	CardCount         int
	GroupSize         int
	ValueSet          string
	ResultWorkerCount int
	ResultQueueSize   int
	TokenSecret       string
	TokenTTL          time.Duration
	GameIdleTTL       time.Duration
	SweepInterval     time.Duration
	LeaderboardLimit  int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:              envOr("ADDR", ":8080"),
		DBPath:            envOr("DB_PATH", "file:matchflash.db"),
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		CardCount:         envIntOr("CARD_COUNT", 24),
		GroupSize:         envIntOr("GROUP_SIZE", 2),
		ValueSet:          envOr("VALUE_SET", "emoji"),
		ResultWorkerCount: envIntOr("RESULT_WORKER_COUNT", 2),
		ResultQueueSize:   envIntOr("RESULT_QUEUE_SIZE", 64),
		TokenSecret:       envOr("TOKEN_SECRET", devTokenSecret),
		TokenTTL:          envDurationOr("TOKEN_TTL", 12*time.Hour),
		GameIdleTTL:       envDurationOr("GAME_IDLE_TTL", time.Hour),
		SweepInterval:     envDurationOr("SWEEP_INTERVAL", 5*time.Minute),
		LeaderboardLimit:  envIntOr("LEADERBOARD_LIMIT", 20),
	}
}

// Validate reports the first setting that cannot produce a playable server.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.GroupSize < 2 {
		return fmt.Errorf("GROUP_SIZE must be at least 2, got %d", c.GroupSize)
	}
	if c.CardCount <= 0 || c.CardCount%c.GroupSize != 0 {
		return fmt.Errorf("CARD_COUNT must be a positive multiple of GROUP_SIZE (%d), got %d", c.GroupSize, c.CardCount)
	}
	size := values.Size(c.ValueSet)
	if size == 0 {
		return fmt.Errorf("VALUE_SET %q is unknown, want one of %v", c.ValueSet, values.Names())
	}
	if size < c.CardCount/c.GroupSize {
		return fmt.Errorf("VALUE_SET %q has %d values, CARD_COUNT/GROUP_SIZE needs %d", c.ValueSet, size, c.CardCount/c.GroupSize)
	}
	if c.ResultWorkerCount <= 0 {
		return fmt.Errorf("RESULT_WORKER_COUNT must be positive, got %d", c.ResultWorkerCount)
	}
	if c.ResultQueueSize <= 0 {
		return fmt.Errorf("RESULT_QUEUE_SIZE must be positive, got %d", c.ResultQueueSize)
	}
	if c.TokenSecret == "" {
		return fmt.Errorf("TOKEN_SECRET cannot be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.GameIdleTTL <= 0 {
		return fmt.Errorf("GAME_IDLE_TTL must be positive, got %s", c.GameIdleTTL)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.LeaderboardLimit <= 0 {
		return fmt.Errorf("LEADERBOARD_LIMIT must be positive, got %d", c.LeaderboardLimit)
	}
	return nil
}

// UsesDevSecret reports whether tokens are signed with the built-in secret.
func (c Config) UsesDevSecret() bool {
	return c.TokenSecret == devTokenSecret
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
