package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	s.upgrader = newUpgrader(s.AllowedOrigins)

	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// Long-lived; kept outside the request timeout.
	r.Get("/games/{id}/ws", s.handleGameSocket)

	r.Group(func(r chi.Router) {
		r.Use(timeoutMiddleware(s.requestTimeout()))

		r.Get("/value-sets", s.handleValueSets)
		r.Post("/games", s.handleCreateGame)
		r.Get("/games/{id}", s.handleGetGame)
		r.Get("/games/{id}/result", s.handleGameResult)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/players/{name}/summary", s.handlePlayerSummary)

		r.Group(func(r chi.Router) {
			r.Use(s.gameAuthMiddleware)
			r.Post("/games/{id}/start", s.handleStartGame)
			r.Post("/games/{id}/reset", s.handleResetGame)
			r.Post("/games/{id}/flip", s.handleFlip)
			r.Post("/games/{id}/hint", s.handleHint)
		})
	})
	return r
}
