package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/vytor/matchflash/internal/logger"
)

// Hub fans events of one game out to its websocket clients. Publish never
// blocks: a client whose buffer is full is disconnected.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool
	log     *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		log:     log,
	}
}

// Subscribe registers conn and starts its pumps. Actions read from the
// socket go to onAction; pass nil for a read-only spectator. The initial
// events are queued before any broadcast can reach the client.
func (h *Hub) Subscribe(conn *websocket.Conn, onAction ActionHandler, initial ...Event) *Client {
	c := newClient(h, conn, onAction)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return nil
	}
	for _, ev := range initial {
		if payload, err := json.Marshal(ev); err == nil {
			c.send <- payload
		}
	}
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.log.Debug("websocket client connected: clients=%d", count)
	go c.writePump()
	go c.readPump()
	return c
}

// Publish serialises ev and queues it for every client.
func (h *Hub) Publish(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("failed to serialise %s event: %v", ev.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.log.Warn("dropping slow websocket client")
			h.removeLocked(c)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.removeLocked(c)
		h.log.Debug("websocket client disconnected: clients=%d", len(h.clients))
	}
}

func (h *Hub) removeLocked(c *Client) {
	delete(h.clients, c)
	close(c.send)
}
