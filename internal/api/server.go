package api

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vytor/matchflash/internal/services"
)

const defaultRequestTimeout = 10 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	DB             Pinger
	GameService    services.GameService
	ResultService  services.ResultService
	RequestTimeout time.Duration
	// AllowedOrigins restricts websocket upgrades; empty accepts any origin.
	AllowedOrigins []string

	upgrader *websocket.Upgrader
}

func (s *Server) requestTimeout() time.Duration {
	if s.RequestTimeout <= 0 {
		return defaultRequestTimeout
	}
	return s.RequestTimeout
}
