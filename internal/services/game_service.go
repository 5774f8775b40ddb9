package services

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vytor/matchflash/internal/auth"
	"github.com/vytor/matchflash/internal/errors"
	"github.com/vytor/matchflash/internal/game"
	"github.com/vytor/matchflash/internal/jobs"
	"github.com/vytor/matchflash/internal/logger"
	"github.com/vytor/matchflash/internal/models"
	"github.com/vytor/matchflash/internal/realtime"
	"github.com/vytor/matchflash/internal/values"
)

const maxPlayerName = 32

// GameService owns the live games of this process
type GameService interface {
	Create(ctx context.Context, req models.CreateGameRequest) (*models.CreatedGame, error)
	Get(ctx context.Context, id string) (*models.GameView, error)
	Exists(id string) bool
	Start(ctx context.Context, id string) (*models.GameView, error)
	Reset(ctx context.Context, id string) (*models.GameView, error)
	Flip(ctx context.Context, id string, cardID int) (bool, error)
	Hint(ctx context.Context, id string) (bool, error)
	Authorize(ctx context.Context, id, token string) (*auth.Claims, error)
	Subscribe(ctx context.Context, id string, conn *websocket.Conn, control bool) error
	Sweep(ctx context.Context) int
	Count() int
	Close()
}

// GameDefaults fills in the fields a create request leaves zero.
type GameDefaults struct {
	CardCount int
	GroupSize int
	ValueSet  string
}

// GameServiceOptions configures NewGameService. Clock and NewRand default
// to the real clock and a randomly seeded source.
type GameServiceOptions struct {
	Defaults GameDefaults
	IdleTTL  time.Duration
	Clock    game.Clock
	NewRand  func() game.Rand
}

type liveGame struct {
	id       string
	player   string
	valueSet string
	engine   *game.Engine[string]
	hub      *realtime.Hub

	mu         sync.Mutex
	lastActive time.Time
}

func (g *liveGame) touch(now time.Time) {
	g.mu.Lock()
	g.lastActive = now
	g.mu.Unlock()
}

func (g *liveGame) idleSince() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastActive
}

type gameService struct {
	mu    sync.RWMutex
	games map[string]*liveGame

	jobQueue jobs.JobQueue
	issuer   *auth.Issuer
	opts     GameServiceOptions
	log      *logger.Logger
}

// NewGameService creates a new GameService
func NewGameService(jobQueue jobs.JobQueue, issuer *auth.Issuer, opts GameServiceOptions) GameService {
	if opts.Clock == nil {
		opts.Clock = game.SystemClock{}
	}
	if opts.Defaults.ValueSet == "" {
		opts.Defaults.ValueSet = "emoji"
	}
	return &gameService{
		games:    make(map[string]*liveGame),
		jobQueue: jobQueue,
		issuer:   issuer,
		opts:     opts,
		log:      logger.Default().WithPrefix("games"),
	}
}

func (s *gameService) Create(ctx context.Context, req models.CreateGameRequest) (*models.CreatedGame, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating game: player=%s, card_count=%d, group_size=%d, value_set=%s",
		req.Player, req.CardCount, req.GroupSize, req.ValueSet)

	player := strings.TrimSpace(req.Player)
	if player == "" {
		return nil, errors.NewValidationError("player", "cannot be empty")
	}
	if utf8.RuneCountInString(player) > maxPlayerName {
		return nil, errors.NewValidationError("player", "must be at most 32 characters")
	}
	if req.CardCount == 0 {
		req.CardCount = s.opts.Defaults.CardCount
	}
	if req.GroupSize == 0 {
		req.GroupSize = s.opts.Defaults.GroupSize
	}
	if req.ValueSet == "" {
		req.ValueSet = s.opts.Defaults.ValueSet
	}
	vals, ok := values.Lookup(req.ValueSet)
	if !ok {
		return nil, errors.NewValidationError("value_set", "unknown value set "+req.ValueSet)
	}

	g := &liveGame{
		id:         uuid.NewString(),
		player:     player,
		valueSet:   req.ValueSet,
		lastActive: s.opts.Clock.Now(),
	}
	g.hub = realtime.NewHub(s.log.WithField("game_id", g.id))

	engineOpts := game.Options[string]{
		Values:    vals,
		CardCount: req.CardCount,
		GroupSize: req.GroupSize,
		Renderer:  g.hub,
		Clock:     s.opts.Clock,
		Logger:    s.log.WithPrefix("game").WithField("game_id", g.id),
		OnStart:   g.hub.Started,
		OnTimer:   g.hub.Timer,
		OnMatched: g.hub.Matched,
		OnEnd:     func(stats game.Stats) { s.finish(g, stats) },
	}
	if s.opts.NewRand != nil {
		engineOpts.Rand = s.opts.NewRand()
	}
	engine, err := game.New(engineOpts)
	if err != nil {
		if stderrors.Is(err, game.ErrInvalidConfig) {
			return nil, errors.NewValidationError("game", err.Error())
		}
		return nil, errors.NewInternalError(err)
	}
	g.engine = engine

	token, err := s.issuer.Issue(g.id, player)
	if err != nil {
		log.Error("failed to issue token: %v", err)
		return nil, errors.NewInternalError(err)
	}

	s.mu.Lock()
	s.games[g.id] = g
	s.mu.Unlock()

	log.Info("game created: game_id=%s, player=%s, cards=%d", g.id, player, engine.CardCount())
	return &models.CreatedGame{GameID: g.id, Token: token, Game: s.view(g)}, nil
}

// finish runs inside the engine's turn, so it must not block or call back
// into the engine.
func (s *gameService) finish(g *liveGame, stats game.Stats) {
	g.hub.Ended(stats)

	result := models.GameResult{
		GameID:     g.id,
		Player:     g.player,
		ValueSet:   g.valueSet,
		CardCount:  g.engine.CardCount(),
		GroupSize:  g.engine.GroupSize(),
		Clicks:     stats.Clicks,
		Hints:      stats.Hints,
		ElapsedMS:  stats.ElapsedMS,
		Elapsed:    stats.Elapsed,
		FinishedAt: s.opts.Clock.Now(),
	}
	s.log.Info("game finished: game_id=%s, player=%s, elapsed=%s, clicks=%d, hints=%d",
		g.id, g.player, stats.Elapsed, stats.Clicks, stats.Hints)

	if err := s.jobQueue.EnqueueResult(result); err != nil {
		s.log.Error("failed to enqueue result: game_id=%s, err=%v", g.id, err)
	}
}

func (s *gameService) lookup(id string) (*liveGame, error) {
	s.mu.RLock()
	g, ok := s.games[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.NewNotFoundError("game", id)
	}
	return g, nil
}

func (s *gameService) Get(ctx context.Context, id string) (*models.GameView, error) {
	logger.FromContext(ctx).Debug("getting game: game_id=%s", id)

	g, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	view := s.view(g)
	return &view, nil
}

// Exists reports whether id names a live game.
func (s *gameService) Exists(id string) bool {
	_, err := s.lookup(id)
	return err == nil
}

func (s *gameService) Start(ctx context.Context, id string) (*models.GameView, error) {
	logger.FromContext(ctx).Debug("starting game: game_id=%s", id)

	g, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	g.touch(s.opts.Clock.Now())
	g.engine.Start()
	view := s.view(g)
	return &view, nil
}

func (s *gameService) Reset(ctx context.Context, id string) (*models.GameView, error) {
	logger.FromContext(ctx).Debug("resetting game: game_id=%s", id)

	g, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	g.touch(s.opts.Clock.Now())
	g.engine.Reset()
	view := s.view(g)
	return &view, nil
}

func (s *gameService) Flip(ctx context.Context, id string, cardID int) (bool, error) {
	logger.FromContext(ctx).Debug("flipping card: game_id=%s, card_id=%d", id, cardID)

	g, err := s.lookup(id)
	if err != nil {
		return false, err
	}
	g.touch(s.opts.Clock.Now())
	return g.engine.Flip(cardID), nil
}

func (s *gameService) Hint(ctx context.Context, id string) (bool, error) {
	logger.FromContext(ctx).Debug("requesting hint: game_id=%s", id)

	g, err := s.lookup(id)
	if err != nil {
		return false, err
	}
	g.touch(s.opts.Clock.Now())
	return g.engine.Hint(), nil
}

// Authorize checks that token was issued for game id.
func (s *gameService) Authorize(ctx context.Context, id, token string) (*auth.Claims, error) {
	if _, err := s.lookup(id); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, errors.NewUnauthorizedError("missing access token", nil)
	}
	claims, err := s.issuer.Verify(token, id)
	if err != nil {
		logger.FromContext(ctx).Warn("rejected token: game_id=%s, err=%v", id, err)
		return nil, errors.NewUnauthorizedError("invalid access token", err)
	}
	return claims, nil
}

// Subscribe attaches conn to the game's event stream. With control set the
// connection may also send actions; otherwise it only watches.
func (s *gameService) Subscribe(ctx context.Context, id string, conn *websocket.Conn, control bool) error {
	g, err := s.lookup(id)
	if err != nil {
		return err
	}

	var onAction realtime.ActionHandler
	if control {
		onAction = func(a realtime.Action) bool { return s.apply(g, a) }
	}
	// Registering inside the engine's turn means no event can fall between
	// the snapshot and the first broadcast the client receives.
	var client *realtime.Client
	g.engine.Inspect(func(session game.Session[string], started bool) {
		snapshot := realtime.Event{Type: realtime.EventSnapshot, Data: s.viewOf(g, session, started)}
		client = g.hub.Subscribe(conn, onAction, snapshot)
	})
	if client == nil {
		return errors.NewConflictError("game is closing")
	}
	logger.FromContext(ctx).Debug("client subscribed: game_id=%s, control=%t", id, control)
	return nil
}

func (s *gameService) apply(g *liveGame, a realtime.Action) bool {
	g.touch(s.opts.Clock.Now())
	switch a.Type {
	case "start":
		g.engine.Start()
		return true
	case "reset":
		g.engine.Reset()
		return true
	case "flip":
		return g.engine.Flip(a.CardID)
	case "hint":
		return g.engine.Hint()
	default:
		return false
	}
}

// Sweep drops games with no action for longer than the idle TTL and
// returns how many it removed.
func (s *gameService) Sweep(ctx context.Context) int {
	if s.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := s.opts.Clock.Now().Add(-s.opts.IdleTTL)

	var idle []*liveGame
	s.mu.Lock()
	for id, g := range s.games {
		if g.idleSince().Before(cutoff) {
			idle = append(idle, g)
			delete(s.games, id)
		}
	}
	s.mu.Unlock()

	for _, g := range idle {
		g.engine.Close()
		g.hub.Close()
	}
	if len(idle) > 0 {
		logger.FromContext(ctx).Info("swept idle games: count=%d", len(idle))
	}
	return len(idle)
}

func (s *gameService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// Close stops every live game and disconnects its clients.
func (s *gameService) Close() {
	s.mu.Lock()
	games := s.games
	s.games = make(map[string]*liveGame)
	s.mu.Unlock()

	for _, g := range games {
		g.engine.Close()
		g.hub.Close()
	}
}

func (s *gameService) view(g *liveGame) models.GameView {
	session, ok := g.engine.Snapshot()
	return s.viewOf(g, session, ok)
}

func (s *gameService) viewOf(g *liveGame, session game.Session[string], started bool) models.GameView {
	view := models.GameView{
		ID:        g.id,
		Player:    g.player,
		ValueSet:  g.valueSet,
		CardCount: g.engine.CardCount(),
		GroupSize: g.engine.GroupSize(),
		Elapsed:   game.FormatElapsed(0),
	}

	if !started {
		return view
	}
	startedAt := session.StartedAt
	view.Started = true
	view.StartedAt = &startedAt
	view.Pending = len(session.Pending)
	view.MatchedCount = session.MatchedCount
	view.InputLocked = session.InputLocked
	view.Clicks = session.Stats.Clicks
	view.Hints = session.Stats.Hints
	view.Elapsed = session.Stats.Elapsed
	view.Ended = session.Ended

	view.Board = make([]models.CardState, 0, len(session.Board))
	for _, id := range session.Board {
		c := session.Cards[id]
		state := models.CardState{
			ID:          c.ID,
			Revealed:    c.Revealed,
			Matched:     c.Matched,
			Highlighted: c.Highlighted,
		}
		if c.Revealed || c.Matched {
			state.Value = c.Value
		}
		view.Board = append(view.Board, state)
	}
	return view
}
