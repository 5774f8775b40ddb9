package models

import "time"

// CardState is what a client is allowed to see of one card. Value is only
// set while the card is face up or matched.
type CardState struct {
	ID          int    `json:"id"`
	Value       string `json:"value,omitempty"`
	Revealed    bool   `json:"revealed"`
	Matched     bool   `json:"matched"`
	Highlighted bool   `json:"highlighted"`
}

// GameView is the public snapshot of a live game.
type GameView struct {
	ID           string      `json:"id"`
	Player       string      `json:"player"`
	ValueSet     string      `json:"value_set"`
	CardCount    int         `json:"card_count"`
	GroupSize    int         `json:"group_size"`
	Started      bool        `json:"started"`
	Board        []CardState `json:"board"`
	Pending      int         `json:"pending"`
	MatchedCount int         `json:"matched_count"`
	InputLocked  bool        `json:"input_locked"`
	Clicks       int         `json:"clicks"`
	Hints        int         `json:"hints"`
	Elapsed      string      `json:"elapsed"`
	Ended        bool        `json:"ended"`
	StartedAt    *time.Time  `json:"started_at,omitempty"`
}

type CreateGameRequest struct {
	Player    string `json:"player"`
	CardCount int    `json:"card_count"`
	GroupSize int    `json:"group_size"`
	ValueSet  string `json:"value_set"`
}

// CreatedGame is returned once per game; Token authorises every later
// action on it.
type CreatedGame struct {
	GameID string   `json:"game_id"`
	Token  string   `json:"token"`
	Game   GameView `json:"game"`
}
