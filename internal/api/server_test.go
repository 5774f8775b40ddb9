package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/matchflash/internal/auth"
	"github.com/vytor/matchflash/internal/models"
	"github.com/vytor/matchflash/internal/services"
	"github.com/vytor/matchflash/internal/testutil"
	"github.com/vytor/matchflash/internal/testutil/mocks"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type apiFixture struct {
	server  *Server
	handler http.Handler
	clock   *testutil.FakeClock
	queue   *mocks.MockJobQueue
	repo    *mocks.MockResultRepository
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	f := &apiFixture{
		clock: testutil.NewFakeClock(epoch),
		queue: &mocks.MockJobQueue{},
		repo:  &mocks.MockResultRepository{},
	}
	issuer := auth.NewIssuer("api-test", time.Hour).WithClock(f.clock.Now)
	games := services.NewGameService(f.queue, issuer, services.GameServiceOptions{
		Defaults: services.GameDefaults{CardCount: 4, GroupSize: 2, ValueSet: "letters"},
		Clock:    f.clock,
	})
	t.Cleanup(games.Close)

	f.server = &Server{
		DB:            stubPinger{},
		GameService:   games,
		ResultService: services.NewResultService(f.repo, 20),
	}
	f.handler = f.server.Routes()
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) createGame(t *testing.T) models.CreatedGame {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/games", "", map[string]any{"player": "ana"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.CreatedGame
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	return created
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error.Code
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestReady(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	f.server.DB = stubPinger{err: assert.AnError}
	rec = f.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestValueSets(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/value-sets", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var sets []valueSetInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sets))
	assert.Contains(t, sets, valueSetInfo{Name: "letters", Size: 26})
}

func TestCreateGame(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/games", "", map[string]any{"player": "ana", "card_count": 6})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.CreatedGame
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.Token)
	assert.Equal(t, 6, created.Game.CardCount)
	assert.Equal(t, "/games/"+created.GameID, rec.Header().Get("Location"))
}

func TestCreateGame_BadRequests(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/games", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", errorCode(t, rec))

	rec = f.do(t, http.MethodPost, "/games", "", map[string]any{"player": "ana", "colour": "red"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/games", "", map[string]any{"player": "ana", "card_count": 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestGetGame_NotFound(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/games/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
}

func TestMutatingRoutesRequireToken(t *testing.T) {
	f := newAPIFixture(t)
	game := f.createGame(t)
	other := f.createGame(t)

	for _, path := range []string{"start", "reset", "hint"} {
		rec := f.do(t, http.MethodPost, "/games/"+game.GameID+"/"+path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)

		rec = f.do(t, http.MethodPost, "/games/"+game.GameID+"/"+path, other.Token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestPlayThroughHTTP(t *testing.T) {
	f := newAPIFixture(t)
	game := f.createGame(t)
	base := "/games/" + game.GameID

	rec := f.do(t, http.MethodPost, base+"/start", game.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view models.GameView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.Started)
	assert.Len(t, view.Board, 4)

	rec = f.do(t, http.MethodPost, base+"/flip", game.Token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	f.queue.On("EnqueueResult", mock.MatchedBy(func(r models.GameResult) bool {
		return r.GameID == game.GameID && r.Clicks == 4
	})).Return(nil).Once()

	for _, id := range []int{0, 1, 2, 3} {
		rec = f.do(t, http.MethodPost, base+"/flip", game.Token, map[string]any{"card_id": id})
		require.Equal(t, http.StatusOK, rec.Code)
		var resp acceptedResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Accepted)
		f.clock.Advance(0)
	}

	rec = f.do(t, http.MethodPost, base+"/flip", game.Token, map[string]any{"card_id": 0})
	var resp acceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Accepted, "matched cards cannot be flipped")

	rec = f.do(t, http.MethodPost, base+"/hint", game.Token, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Accepted, "no hints after the game ends")

	rec = f.do(t, http.MethodGet, base, "", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, view.Ended)
	f.queue.AssertExpectations(t)
}

func TestLeaderboard(t *testing.T) {
	f := newAPIFixture(t)

	since := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	f.repo.On("Leaderboard", mock.Anything, mock.MatchedBy(func(filter models.LeaderboardFilter) bool {
		return filter.CardCount == 24 &&
			filter.GroupSize == 2 &&
			filter.Player == "ana" &&
			filter.Limit == 5 &&
			filter.Since != nil && filter.Since.Equal(since)
	})).Return([]models.GameResult{{GameID: "g-1", Player: "ana"}}, nil).Once()

	rec := f.do(t, http.MethodGet, "/leaderboard?card_count=24&group_size=2&player=ana&limit=5&since=2024-02-01T00:00:00Z", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var results []models.GameResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "g-1", results[0].GameID)
	f.repo.AssertExpectations(t)
}

func TestLeaderboard_BadQuery(t *testing.T) {
	f := newAPIFixture(t)

	for _, query := range []string{"limit=ten", "since=yesterday", "limit=500"} {
		rec := f.do(t, http.MethodGet, "/leaderboard?"+query, "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestPlayerSummary(t *testing.T) {
	f := newAPIFixture(t)
	f.repo.On("PlayerSummary", mock.Anything, "ana").
		Return(&models.PlayerSummary{Player: "ana", GamesPlayed: 2}, nil).Once()
	f.repo.On("PlayerSummary", mock.Anything, "bob").Return(nil, nil).Once()

	rec := f.do(t, http.MethodGet, "/players/ana/summary", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary models.PlayerSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.GamesPlayed)

	rec = f.do(t, http.MethodGet, "/players/bob/summary", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGameResult(t *testing.T) {
	f := newAPIFixture(t)
	f.repo.On("GetByGameID", mock.Anything, "g-1").Return(&models.GameResult{GameID: "g-1"}, nil).Once()
	f.repo.On("GetByGameID", mock.Anything, "g-2").Return(nil, nil).Once()

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/games/g-1/result", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/games/g-2/result", "", nil).Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, rec))
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"abc":          "",
		"":             "",
	}
	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		assert.Equal(t, want, bearerToken(req), header)
	}
}

func dialGame(t *testing.T, srv *httptest.Server, gameID, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/games/" + gameID + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	return websocket.DefaultDialer.Dial(url, nil)
}

func readType(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&ev))
	return ev.Type, ev.Data
}

func TestGameSocket(t *testing.T) {
	f := newAPIFixture(t)
	game := f.createGame(t)
	srv := httptest.NewServer(f.handler)
	t.Cleanup(srv.Close)

	spectator, _, err := dialGame(t, srv, game.GameID, "")
	require.NoError(t, err)
	defer spectator.Close()
	typ, _ := readType(t, spectator)
	assert.Equal(t, "snapshot", typ)

	player, _, err := dialGame(t, srv, game.GameID, game.Token)
	require.NoError(t, err)
	defer player.Close()
	typ, _ = readType(t, player)
	assert.Equal(t, "snapshot", typ)

	require.NoError(t, player.WriteJSON(map[string]any{"type": "start"}))

	var seen []string
	for len(seen) < 3 {
		typ, _ := readType(t, spectator)
		seen = append(seen, typ)
	}
	assert.Equal(t, []string{"board", "matched", "started"}, seen)
}

func TestGameSocket_Rejections(t *testing.T) {
	f := newAPIFixture(t)
	game := f.createGame(t)
	srv := httptest.NewServer(f.handler)
	t.Cleanup(srv.Close)

	_, resp, err := dialGame(t, srv, game.GameID, "forged")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = dialGame(t, srv, "missing", "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
