package models

import "time"

// GameResult is the score of one finished game.
type GameResult struct {
	ID         int64     `json:"id"`
	GameID     string    `json:"game_id"`
	Player     string    `json:"player"`
	ValueSet   string    `json:"value_set"`
	CardCount  int       `json:"card_count"`
	GroupSize  int       `json:"group_size"`
	Clicks     int       `json:"clicks"`
	Hints      int       `json:"hints"`
	ElapsedMS  int64     `json:"elapsed_ms"`
	Elapsed    string    `json:"elapsed"`
	FinishedAt time.Time `json:"finished_at"`
}

type LeaderboardFilter struct {
	CardCount int
	GroupSize int
	ValueSet  string
	Player    string
	Since     *time.Time
	Limit     int
	Offset    int
}

type PlayerSummary struct {
	Player        string     `json:"player"`
	GamesPlayed   int        `json:"games_played"`
	BestElapsedMS int64      `json:"best_elapsed_ms"`
	AvgClicks     float64    `json:"avg_clicks"`
	TotalHints    int        `json:"total_hints"`
	LastPlayedAt  *time.Time `json:"last_played_at"`
}
