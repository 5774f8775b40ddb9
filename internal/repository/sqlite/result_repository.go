package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/matchflash/internal/logger"
	"github.com/vytor/matchflash/internal/models"
	"github.com/vytor/matchflash/internal/repository"
)

const defaultLeaderboardLimit = 20

var resultColumns = []string{
	"id", "game_id", "player", "value_set", "card_count", "group_size",
	"clicks", "hints", "elapsed_ms", "elapsed", "finished_at",
}

type resultRepository struct {
	db *sql.DB
}

// NewResultRepository creates a new ResultRepository implementation
func NewResultRepository(db *sql.DB) repository.ResultRepository {
	return &resultRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (models.GameResult, error) {
	var r models.GameResult
	err := row.Scan(&r.ID, &r.GameID, &r.Player, &r.ValueSet, &r.CardCount, &r.GroupSize,
		&r.Clicks, &r.Hints, &r.ElapsedMS, &r.Elapsed, &r.FinishedAt)
	return r, err
}

func (r *resultRepository) Insert(ctx context.Context, result models.GameResult) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	log.Debug("inserting result: game_id=%s player=%s", result.GameID, result.Player)

	if result.FinishedAt.IsZero() {
		result.FinishedAt = time.Now()
	}
	// Stored as text; a single zone keeps range filters ordered.
	result.FinishedAt = result.FinishedAt.UTC()

	var id int64
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO game_results (game_id, player, value_set, card_count, group_size, clicks, hints, elapsed_ms, elapsed, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, result.GameID, result.Player, result.ValueSet, result.CardCount, result.GroupSize,
			result.Clicks, result.Hints, result.ElapsedMS, result.Elapsed, result.FinishedAt)
		if err != nil {
			log.Error("failed to insert result: %v", err)
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
INSERT INTO player_stats (player, games_played, best_elapsed_ms, total_clicks, total_hints, last_played_at)
VALUES (?, 1, ?, ?, ?, ?)
ON CONFLICT(player) DO UPDATE SET
    games_played = games_played + 1,
    best_elapsed_ms = MIN(best_elapsed_ms, excluded.best_elapsed_ms),
    total_clicks = total_clicks + excluded.total_clicks,
    total_hints = total_hints + excluded.total_hints,
    last_played_at = excluded.last_played_at
`, result.Player, result.ElapsedMS, result.Clicks, result.Hints, result.FinishedAt)
		if err != nil {
			log.Error("failed to update player stats: %v", err)
		}
		return err
	})
	if err != nil {
		return 0, err
	}
	log.Debug("result inserted: id=%d", id)
	return id, nil
}

func (r *resultRepository) GetByGameID(ctx context.Context, gameID string) (*models.GameResult, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")

	query, args, err := sqlBuilder.Select(resultColumns...).
		From("game_results").
		Where(squirrel.Eq{"game_id": gameID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	result, err := scanResult(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("result not found: game_id=%s", gameID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get result: %v", err)
		return nil, err
	}
	return &result, nil
}

func (r *resultRepository) Leaderboard(ctx context.Context, filter models.LeaderboardFilter) ([]models.GameResult, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")
	log.Debug("leaderboard: card_count=%d group_size=%d value_set=%s player=%s",
		filter.CardCount, filter.GroupSize, filter.ValueSet, filter.Player)

	query := sqlBuilder.Select(resultColumns...).From("game_results")

	if filter.CardCount != 0 {
		query = query.Where(squirrel.Eq{"card_count": filter.CardCount})
	}
	if filter.GroupSize != 0 {
		query = query.Where(squirrel.Eq{"group_size": filter.GroupSize})
	}
	if filter.ValueSet != "" {
		query = query.Where(squirrel.Eq{"value_set": filter.ValueSet})
	}
	if filter.Player != "" {
		query = query.Where(squirrel.Eq{"player": filter.Player})
	}
	if filter.Since != nil {
		query = query.Where(squirrel.GtOrEq{"finished_at": filter.Since.UTC()})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.
		OrderBy("elapsed_ms ASC", "clicks ASC", "hints ASC", "finished_at ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query leaderboard: %v", err)
		return nil, err
	}
	defer rows.Close()

	var results []models.GameResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			log.Error("failed to scan result row: %v", err)
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func (r *resultRepository) PlayerSummary(ctx context.Context, player string) (*models.PlayerSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("result_repo")

	var (
		s           models.PlayerSummary
		totalClicks int
		lastPlayed  sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
SELECT player, games_played, best_elapsed_ms, total_clicks, total_hints, last_played_at
FROM player_stats
WHERE player = ?
`, player).Scan(&s.Player, &s.GamesPlayed, &s.BestElapsedMS, &totalClicks, &s.TotalHints, &lastPlayed)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no stats for player: %s", player)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get player summary: %v", err)
		return nil, err
	}
	if s.GamesPlayed > 0 {
		s.AvgClicks = float64(totalClicks) / float64(s.GamesPlayed)
	}
	if lastPlayed.Valid {
		s.LastPlayedAt = &lastPlayed.Time
	}
	return &s, nil
}
