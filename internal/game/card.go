package game

import (
	"slices"
	"time"
)

// Card is a single card on the board. ID is assigned at deck construction
// and doubles as the ordering key for placement.
type Card[V comparable] struct {
	ID          int  `json:"id"`
	Value       V    `json:"value"`
	Revealed    bool `json:"revealed"`
	Matched     bool `json:"matched"`
	Highlighted bool `json:"highlighted"`
}

// Stats is the score sheet of a session.
type Stats struct {
	Clicks    int    `json:"clicks"`
	Hints     int    `json:"hints"`
	Elapsed   string `json:"elapsed"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// Session is the complete state of one game. Start replaces it wholesale.
//
// Cards is in construction order, so Cards[i].ID == i. Board holds card ids
// in placement order. Pending holds the ids of the revealed but unresolved
// group, in flip order.
type Session[V comparable] struct {
	Cards        []Card[V] `json:"cards"`
	Board        []int     `json:"board"`
	GroupSize    int       `json:"group_size"`
	Pending      []int     `json:"pending"`
	MatchedCount int       `json:"matched_count"`
	InputLocked  bool      `json:"input_locked"`
	Stats        Stats     `json:"stats"`
	StartedAt    time.Time `json:"started_at"`
	Ended        bool      `json:"ended"`

	resolving  bool
	hinting    bool
	closed     bool
	ticker     Timer
	resolution Timer
	hint       Timer
}

// Complete reports whether every card has been matched.
func (s *Session[V]) Complete() bool {
	return s.MatchedCount == len(s.Cards)
}

// Resolving reports whether a full group is waiting on its resolution delay.
func (s *Session[V]) Resolving() bool { return s.resolving }

// Hinting reports whether the hint highlight is currently shown.
func (s *Session[V]) Hinting() bool { return s.hinting }

// syncLock recomputes InputLocked from its two independent reasons.
func (s *Session[V]) syncLock() {
	s.InputLocked = s.resolving || s.hinting
}

// Closed reports whether Close retired this session.
func (s *Session[V]) Closed() bool { return s.closed }

func (s *Session[V]) cancelTimers() {
	for _, t := range []Timer{s.ticker, s.resolution, s.hint} {
		if t != nil {
			t.Stop()
		}
	}
	s.ticker, s.resolution, s.hint = nil, nil, nil
}

// clone copies the observable state; timer handles stay with the original.
func (s *Session[V]) clone() Session[V] {
	return Session[V]{
		Cards:        slices.Clone(s.Cards),
		Board:        slices.Clone(s.Board),
		GroupSize:    s.GroupSize,
		Pending:      slices.Clone(s.Pending),
		MatchedCount: s.MatchedCount,
		InputLocked:  s.InputLocked,
		Stats:        s.Stats,
		StartedAt:    s.StartedAt,
		Ended:        s.Ended,
		resolving:    s.resolving,
		hinting:      s.hinting,
		closed:       s.closed,
	}
}
