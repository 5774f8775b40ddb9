package services

import (
	"context"
	"strings"

	"github.com/vytor/matchflash/internal/errors"
	"github.com/vytor/matchflash/internal/logger"
	"github.com/vytor/matchflash/internal/models"
	"github.com/vytor/matchflash/internal/repository"
)

// MaxLeaderboardLimit caps a single leaderboard page.
const MaxLeaderboardLimit = 100

// ResultService handles finished-game scores
type ResultService interface {
	Record(ctx context.Context, result models.GameResult) error
	GetResult(ctx context.Context, gameID string) (*models.GameResult, error)
	Leaderboard(ctx context.Context, filter models.LeaderboardFilter) ([]models.GameResult, error)
	PlayerSummary(ctx context.Context, player string) (*models.PlayerSummary, error)
}

type resultService struct {
	resultRepo   repository.ResultRepository
	defaultLimit int
}

// NewResultService creates a new ResultService. defaultLimit applies to
// leaderboard requests that do not ask for a page size.
func NewResultService(resultRepo repository.ResultRepository, defaultLimit int) ResultService {
	if defaultLimit <= 0 || defaultLimit > MaxLeaderboardLimit {
		defaultLimit = 20
	}
	return &resultService{resultRepo: resultRepo, defaultLimit: defaultLimit}
}

// Record stores result once; a second result for the same game is ignored.
func (s *resultService) Record(ctx context.Context, result models.GameResult) error {
	log := logger.FromContext(ctx)
	log.Debug("recording result: game_id=%s, player=%s", result.GameID, result.Player)

	if result.GameID == "" {
		return errors.NewValidationError("game_id", "cannot be empty")
	}
	if strings.TrimSpace(result.Player) == "" {
		return errors.NewValidationError("player", "cannot be empty")
	}

	existing, err := s.resultRepo.GetByGameID(ctx, result.GameID)
	if err != nil {
		log.Error("failed to look up result: %v", err)
		return errors.NewInternalError(err)
	}
	if existing != nil {
		log.Warn("result already recorded: game_id=%s", result.GameID)
		return nil
	}

	if _, err := s.resultRepo.Insert(ctx, result); err != nil {
		log.Error("failed to insert result: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *resultService) GetResult(ctx context.Context, gameID string) (*models.GameResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting result: game_id=%s", gameID)

	result, err := s.resultRepo.GetByGameID(ctx, gameID)
	if err != nil {
		log.Error("failed to get result: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if result == nil {
		return nil, errors.NewNotFoundError("result", gameID)
	}
	return result, nil
}

func (s *resultService) Leaderboard(ctx context.Context, filter models.LeaderboardFilter) ([]models.GameResult, error) {
	log := logger.FromContext(ctx)

	switch {
	case filter.Limit < 0 || filter.Limit > MaxLeaderboardLimit:
		return nil, errors.NewValidationError("limit", "must be between 1 and 100")
	case filter.Offset < 0:
		return nil, errors.NewValidationError("offset", "cannot be negative")
	case filter.CardCount < 0:
		return nil, errors.NewValidationError("card_count", "cannot be negative")
	case filter.GroupSize < 0:
		return nil, errors.NewValidationError("group_size", "cannot be negative")
	}
	if filter.Limit == 0 {
		filter.Limit = s.defaultLimit
	}
	log.Debug("getting leaderboard: card_count=%d, group_size=%d, limit=%d, offset=%d",
		filter.CardCount, filter.GroupSize, filter.Limit, filter.Offset)

	results, err := s.resultRepo.Leaderboard(ctx, filter)
	if err != nil {
		log.Error("failed to get leaderboard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if results == nil {
		results = []models.GameResult{}
	}
	return results, nil
}

func (s *resultService) PlayerSummary(ctx context.Context, player string) (*models.PlayerSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting player summary: player=%s", player)

	if strings.TrimSpace(player) == "" {
		return nil, errors.NewValidationError("player", "cannot be empty")
	}

	summary, err := s.resultRepo.PlayerSummary(ctx, player)
	if err != nil {
		log.Error("failed to get player summary: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if summary == nil {
		return nil, errors.NewNotFoundError("player", player)
	}
	return summary, nil
}
