// Package game implements the matching-pairs state machine: deck
// construction, card placement, flip sequencing, group resolution,
// scoring, the elapsed-time display and hints.
package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/vytor/matchflash/internal/logger"
)

const (
	DefaultCardCount = 24
	DefaultGroupSize = 2

	MatchDelay    = 0
	MismatchDelay = 750 * time.Millisecond
	HintPenalty   = 5 * time.Second
	HintDuration  = time.Second
	TickInterval  = time.Second
)

// ErrInvalidConfig is returned by New when the deck cannot be built.
var ErrInvalidConfig = errors.New("invalid game configuration")

// Options configures an Engine. Every callback is optional.
type Options[V comparable] struct {
	Values    []V
	CardCount int
	GroupSize int

	Renderer Renderer[V]
	Clock    Clock
	Rand     Rand
	Logger   *logger.Logger

	OnStart   func()
	OnTimer   func(elapsed string)
	OnMatched func(matched, total int)
	OnEnd     func(stats Stats)
}

// Engine owns one game at a time. All entry points and all timer callbacks
// are serialised on a single mutex, so each event is handled as one turn.
// Callbacks and renderer calls run inside that turn and must not call back
// into the engine.
type Engine[V comparable] struct {
	mu sync.Mutex

	values    []V
	cardCount int
	groupSize int

	renderer Renderer[V]
	clock    Clock
	rand     Rand
	log      *logger.Logger

	onStart   func()
	onTimer   func(string)
	onMatched func(int, int)
	onEnd     func(Stats)

	session *Session[V]
}

// New validates opts and returns an engine with no active session.
func New[V comparable](opts Options[V]) (*Engine[V], error) {
	cardCount := opts.CardCount
	if cardCount == 0 {
		cardCount = DefaultCardCount
	}
	groupSize := opts.GroupSize
	if groupSize == 0 {
		groupSize = DefaultGroupSize
	}

	if groupSize < 2 {
		return nil, fmt.Errorf("%w: group size %d is below 2", ErrInvalidConfig, groupSize)
	}
	if cardCount < 0 {
		return nil, fmt.Errorf("%w: card count %d is negative", ErrInvalidConfig, cardCount)
	}
	if cardCount%groupSize != 0 {
		return nil, fmt.Errorf("%w: card count %d is not divisible by group size %d", ErrInvalidConfig, cardCount, groupSize)
	}
	groups := cardCount / groupSize
	if len(opts.Values) < groups {
		return nil, fmt.Errorf("%w: need %d values, got %d", ErrInvalidConfig, groups, len(opts.Values))
	}
	seen := make(map[V]struct{}, groups)
	for _, v := range opts.Values[:groups] {
		if _, dup := seen[v]; dup {
			return nil, fmt.Errorf("%w: value %v appears more than once", ErrInvalidConfig, v)
		}
		seen[v] = struct{}{}
	}

	e := &Engine[V]{
		values:    slices.Clone(opts.Values[:groups]),
		cardCount: cardCount,
		groupSize: groupSize,
		renderer:  opts.Renderer,
		clock:     opts.Clock,
		rand:      opts.Rand,
		log:       opts.Logger,
		onStart:   opts.OnStart,
		onTimer:   opts.OnTimer,
		onMatched: opts.OnMatched,
		onEnd:     opts.OnEnd,
	}
	if e.renderer == nil {
		e.renderer = nopRenderer[V]{}
	}
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	if e.rand == nil {
		e.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if e.log == nil {
		e.log = logger.Default().WithPrefix("game")
	}
	return e, nil
}

func (e *Engine[V]) CardCount() int { return e.cardCount }
func (e *Engine[V]) GroupSize() int { return e.groupSize }

// Start discards the current session, cancels everything it had scheduled
// and deals a new one. Reset is the same operation.
func (e *Engine[V]) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		e.session.cancelTimers()
	}

	cards := BuildDeck(e.values, e.cardCount, e.groupSize)
	s := &Session[V]{
		Cards:     cards,
		Board:     PlaceCards(cards, e.rand),
		GroupSize: e.groupSize,
		StartedAt: e.clock.Now(),
		Stats:     Stats{Elapsed: FormatElapsed(0)},
	}
	e.session = s
	e.log.Debug("session started: cards=%d group_size=%d", e.cardCount, e.groupSize)

	e.renderer.RenderBoard(slices.Clone(s.Board))
	e.updateMatched(s, false)
	e.scheduleTick(s)
	if e.onStart != nil {
		e.onStart()
	}
}

// Reset is an alias for Start.
func (e *Engine[V]) Reset() { e.Start() }

// Flip reveals one card. It returns false, changing nothing, when there is
// no session, input is locked, the id is unknown, or the card is already
// revealed or matched.
func (e *Engine[V]) Flip(id int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	if s == nil || s.closed || s.InputLocked || id < 0 || id >= len(s.Cards) {
		return false
	}
	c := &s.Cards[id]
	if c.Revealed || c.Matched {
		return false
	}

	s.Stats.Clicks++
	c.Revealed = true
	s.Pending = append(s.Pending, id)
	e.renderer.CardRevealed(id, c.Value)

	if len(s.Pending) == s.GroupSize {
		e.resolve(s)
	}
	return true
}

// resolve locks input before anything is scheduled; the lock is released
// by completeResolution.
func (e *Engine[V]) resolve(s *Session[V]) {
	first := s.Cards[s.Pending[0]].Value
	match := true
	for _, id := range s.Pending[1:] {
		if s.Cards[id].Value != first {
			match = false
			break
		}
	}

	s.resolving = true
	s.syncLock()

	delay := time.Duration(MismatchDelay)
	if match {
		delay = MatchDelay
	}
	e.log.Debug("resolving group %v: match=%t", s.Pending, match)
	s.resolution = e.clock.AfterFunc(delay, func() { e.completeResolution(s, match) })
}

func (e *Engine[V]) completeResolution(s *Session[V], match bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != s || s.closed || !s.resolving {
		return
	}

	for _, id := range s.Pending {
		c := &s.Cards[id]
		c.Matched = match
		c.Revealed = false
		if match {
			e.renderer.CardMatched(id, c.Value)
		} else {
			e.renderer.CardConcealed(id)
		}
	}
	s.Pending = nil
	s.resolution = nil
	s.resolving = false
	s.syncLock()

	e.updateMatched(s, match)
}

func (e *Engine[V]) updateMatched(s *Session[V], match bool) {
	if match {
		s.MatchedCount += s.GroupSize
	}
	if e.onMatched != nil {
		e.onMatched(s.MatchedCount, len(s.Cards))
	}
	if s.Complete() {
		e.end(s)
	}
}

func (e *Engine[V]) end(s *Session[V]) {
	if s.Ended {
		return
	}
	s.Ended = true
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	e.refreshElapsed(s)
	e.log.Debug("session ended: clicks=%d hints=%d elapsed=%s", s.Stats.Clicks, s.Stats.Hints, s.Stats.Elapsed)
	if e.onEnd != nil {
		e.onEnd(s.Stats)
	}
}

// Hint charges HintPenalty against the clock, highlights every card and
// blocks flips for HintDuration. A hint is refused while another is still
// showing, before the first start, and after the game has ended.
func (e *Engine[V]) Hint() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	if s == nil || s.closed || s.Ended || s.hinting {
		return false
	}

	s.StartedAt = s.StartedAt.Add(-HintPenalty)
	s.Stats.Hints++
	s.hinting = true
	s.syncLock()
	for i := range s.Cards {
		s.Cards[i].Highlighted = true
	}
	e.renderer.HighlightAll(true)
	e.log.Debug("hint shown: hints=%d", s.Stats.Hints)

	s.hint = e.clock.AfterFunc(HintDuration, func() { e.clearHint(s) })
	return true
}

func (e *Engine[V]) clearHint(s *Session[V]) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != s || s.closed || !s.hinting {
		return
	}
	for i := range s.Cards {
		s.Cards[i].Highlighted = false
	}
	e.renderer.HighlightAll(false)
	s.hint = nil
	s.hinting = false
	s.syncLock()
}

func (e *Engine[V]) scheduleTick(s *Session[V]) {
	s.ticker = e.clock.AfterFunc(TickInterval, func() { e.tick(s) })
}

func (e *Engine[V]) tick(s *Session[V]) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != s || s.closed || s.Ended {
		return
	}
	e.refreshElapsed(s)
	if e.onTimer != nil {
		e.onTimer(s.Stats.Elapsed)
	}
	e.scheduleTick(s)
}

func (e *Engine[V]) refreshElapsed(s *Session[V]) {
	d := e.clock.Now().Sub(s.StartedAt)
	s.Stats.Elapsed = FormatElapsed(d)
	s.Stats.ElapsedMS = d.Milliseconds()
}

// Inspect calls fn with a copy of the current session, or false before the
// first Start, inside the engine's turn: no event is emitted while fn runs.
// fn must not call back into the engine.
func (e *Engine[V]) Inspect(fn func(s Session[V], started bool)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		fn(Session[V]{}, false)
		return
	}
	fn(e.session.clone(), true)
}

// Snapshot returns a copy of the current session, or false before the
// first Start.
func (e *Engine[V]) Snapshot() (Session[V], bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return Session[V]{}, false
	}
	return e.session.clone(), true
}

// Close cancels every pending callback of the current session and refuses
// further input on it, including callbacks that already fired and are
// waiting for the lock. The session stays readable through Snapshot; Start
// deals a new one.
func (e *Engine[V]) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		e.session.closed = true
		e.session.cancelTimers()
	}
}
