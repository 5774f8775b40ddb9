package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/matchflash/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:              ":8080",
		DBPath:            "test.db",
		LogLevel:          "INFO",
		CardCount:         24,
		GroupSize:         2,
		ValueSet:          "emoji",
		ResultWorkerCount: 2,
		ResultQueueSize:   64,
		TokenSecret:       "secret",
		TokenTTL:          time.Hour,
		GameIdleTTL:       time.Hour,
		SweepInterval:     time.Minute,
		LeaderboardLimit:  20,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"empty addr", func(c *config.Config) { c.Addr = "" }, "ADDR cannot be empty"},
		{"empty db path", func(c *config.Config) { c.DBPath = "" }, "DB_PATH cannot be empty"},
		{"group size too small", func(c *config.Config) { c.GroupSize = 1 }, "GROUP_SIZE"},
		{"card count not divisible", func(c *config.Config) { c.CardCount = 25 }, "CARD_COUNT"},
		{"card count zero", func(c *config.Config) { c.CardCount = 0 }, "CARD_COUNT"},
		{"unknown value set", func(c *config.Config) { c.ValueSet = "planets" }, "VALUE_SET \"planets\" is unknown"},
		{"value set too small", func(c *config.Config) { c.ValueSet = "animals"; c.CardCount = 40 }, "needs 20"},
		{"no workers", func(c *config.Config) { c.ResultWorkerCount = 0 }, "RESULT_WORKER_COUNT"},
		{"no queue", func(c *config.Config) { c.ResultQueueSize = -1 }, "RESULT_QUEUE_SIZE"},
		{"empty secret", func(c *config.Config) { c.TokenSecret = "" }, "TOKEN_SECRET"},
		{"zero token ttl", func(c *config.Config) { c.TokenTTL = 0 }, "TOKEN_TTL"},
		{"zero idle ttl", func(c *config.Config) { c.GameIdleTTL = 0 }, "GAME_IDLE_TTL"},
		{"zero sweep interval", func(c *config.Config) { c.SweepInterval = 0 }, "SWEEP_INTERVAL"},
		{"zero leaderboard limit", func(c *config.Config) { c.LeaderboardLimit = 0 }, "LEADERBOARD_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ADDR", "DB_PATH", "CARD_COUNT", "GROUP_SIZE", "VALUE_SET", "TOKEN_SECRET", "TOKEN_TTL"} {
		t.Setenv(key, "")
	}

	cfg := config.Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 24, cfg.CardCount)
	assert.Equal(t, 2, cfg.GroupSize)
	assert.Equal(t, "emoji", cfg.ValueSet)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.UsesDevSecret())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ADDR", ":9000")
	t.Setenv("CARD_COUNT", "18")
	t.Setenv("GROUP_SIZE", "3")
	t.Setenv("VALUE_SET", "letters")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("TOKEN_SECRET", "s3cret")

	cfg := config.Load()
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 18, cfg.CardCount)
	assert.Equal(t, 3, cfg.GroupSize)
	assert.Equal(t, "letters", cfg.ValueSet)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.False(t, cfg.UsesDevSecret())
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("CARD_COUNT", "lots")
	t.Setenv("GAME_IDLE_TTL", "forever")

	cfg := config.Load()
	assert.Equal(t, 24, cfg.CardCount)
	assert.Equal(t, time.Hour, cfg.GameIdleTTL)
}
