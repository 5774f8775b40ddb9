package api

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/vytor/matchflash/internal/errors"
	"github.com/vytor/matchflash/internal/logger"
	"github.com/vytor/matchflash/internal/models"
	"github.com/vytor/matchflash/internal/values"
)

const maxBodyBytes = 1 << 16

type flipRequest struct {
	CardID *int `json:"card_id"`
}

type acceptedResponse struct {
	Accepted bool `json:"accepted"`
}

type valueSetInfo struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.NewBadRequestError("invalid JSON body: " + err.Error())
	}
	return nil
}

func newUpgrader(allowed []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			return slices.Contains(allowed, r.Header.Get("Origin"))
		},
	}
}

func (s *Server) handleValueSets(w http.ResponseWriter, r *http.Request) {
	names := values.Names()
	sets := make([]valueSetInfo, 0, len(names))
	for _, name := range names {
		sets = append(sets, valueSetInfo{Name: name, Size: values.Size(name)})
	}
	writeJSON(w, r, http.StatusOK, sets)
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	created, err := s.GameService.Create(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Location", "/games/"+created.GameID)
	writeJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	view, err := s.GameService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	view, err := s.GameService.Start(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleResetGame(w http.ResponseWriter, r *http.Request) {
	view, err := s.GameService.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request) {
	var req flipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.CardID == nil {
		handleError(w, r, errors.NewValidationError("card_id", "is required"))
		return
	}

	accepted, err := s.GameService.Flip(r.Context(), chi.URLParam(r, "id"), *req.CardID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, acceptedResponse{Accepted: accepted})
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	accepted, err := s.GameService.Hint(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, acceptedResponse{Accepted: accepted})
}

func (s *Server) handleGameResult(w http.ResponseWriter, r *http.Request) {
	result, err := s.ResultService.GetResult(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// handleGameSocket streams game events. Browsers cannot set headers on a
// websocket handshake, so the token travels as ?token=. Without a token
// the connection only watches.
func (s *Server) handleGameSocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	id := chi.URLParam(r, "id")

	token := r.URL.Query().Get("token")
	if token == "" {
		token = bearerToken(r)
	}
	control := token != ""
	if control {
		if _, err := s.GameService.Authorize(ctx, id, token); err != nil {
			handleError(w, r, err)
			return
		}
	} else if !s.GameService.Exists(id) {
		handleError(w, r, errors.NewNotFoundError("game", id))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		log.Warn("websocket upgrade failed: %v", err)
		return
	}
	if err := s.GameService.Subscribe(ctx, id, conn, control); err != nil {
		log.Warn("websocket subscribe failed: %v", err)
		conn.Close()
	}
}
