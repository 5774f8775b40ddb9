package repository

import (
	"context"

	"github.com/vytor/matchflash/internal/models"
)

// ResultRepository handles finished-game results and per-player totals
type ResultRepository interface {
	// Insert stores the result and folds it into the player's totals.
	Insert(ctx context.Context, result models.GameResult) (int64, error)
	// GetByGameID returns nil, nil when no result exists.
	GetByGameID(ctx context.Context, gameID string) (*models.GameResult, error)
	Leaderboard(ctx context.Context, filter models.LeaderboardFilter) ([]models.GameResult, error)
	// PlayerSummary returns nil, nil for a player with no finished games.
	PlayerSummary(ctx context.Context, player string) (*models.PlayerSummary, error)
}
