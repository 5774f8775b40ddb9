package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/matchflash/internal/errors"
	"github.com/vytor/matchflash/internal/models"
)

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewBadRequestError(key + " must be an integer")
	}
	return n, nil
}

func parseLeaderboardFilter(r *http.Request) (models.LeaderboardFilter, error) {
	q := r.URL.Query()
	filter := models.LeaderboardFilter{
		ValueSet: q.Get("value_set"),
		Player:   q.Get("player"),
	}

	var err error
	for key, dst := range map[string]*int{
		"card_count": &filter.CardCount,
		"group_size": &filter.GroupSize,
		"limit":      &filter.Limit,
		"offset":     &filter.Offset,
	} {
		if *dst, err = queryInt(r, key); err != nil {
			return filter, err
		}
	}

	if raw := q.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.NewBadRequestError("since must be an RFC 3339 timestamp")
		}
		filter.Since = &since
	}
	return filter, nil
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	filter, err := parseLeaderboardFilter(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	results, err := s.ResultService.Leaderboard(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, results)
}

func (s *Server) handlePlayerSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ResultService.PlayerSummary(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}
