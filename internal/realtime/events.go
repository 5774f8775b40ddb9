package realtime

import "github.com/vytor/matchflash/internal/game"

// Event types pushed to clients.
const (
	EventSnapshot      = "snapshot"
	EventBoard         = "board"
	EventCardRevealed  = "card_revealed"
	EventCardConcealed = "card_concealed"
	EventCardMatched   = "card_matched"
	EventHighlight     = "highlight"
	EventStarted       = "started"
	EventTimer         = "timer"
	EventMatched       = "matched"
	EventEnded         = "ended"
	EventRejected      = "rejected"
)

// Event is one JSON message on the wire.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type cardData struct {
	ID    int    `json:"id"`
	Value string `json:"value,omitempty"`
}

type matchedData struct {
	Matched int `json:"matched"`
	Total   int `json:"total"`
}

// Action is a command sent by a client over the socket.
type Action struct {
	Type   string `json:"type"` // "start", "reset", "flip", "hint"
	CardID int    `json:"card_id"`
}

// ActionHandler applies a client action. It reports whether the engine
// accepted it.
type ActionHandler func(Action) bool

// Hub is a game.Renderer; the remaining engine callbacks map onto the
// methods below.
var _ game.Renderer[string] = (*Hub)(nil)

func (h *Hub) RenderBoard(board []int) {
	h.Publish(Event{Type: EventBoard, Data: map[string]any{"board": board}})
}

func (h *Hub) CardRevealed(id int, value string) {
	h.Publish(Event{Type: EventCardRevealed, Data: cardData{ID: id, Value: value}})
}

func (h *Hub) CardConcealed(id int) {
	h.Publish(Event{Type: EventCardConcealed, Data: cardData{ID: id}})
}

func (h *Hub) CardMatched(id int, value string) {
	h.Publish(Event{Type: EventCardMatched, Data: cardData{ID: id, Value: value}})
}

func (h *Hub) HighlightAll(on bool) {
	h.Publish(Event{Type: EventHighlight, Data: map[string]bool{"on": on}})
}

func (h *Hub) Started() {
	h.Publish(Event{Type: EventStarted})
}

func (h *Hub) Timer(elapsed string) {
	h.Publish(Event{Type: EventTimer, Data: map[string]string{"elapsed": elapsed}})
}

func (h *Hub) Matched(matched, total int) {
	h.Publish(Event{Type: EventMatched, Data: matchedData{Matched: matched, Total: total}})
}

func (h *Hub) Ended(stats game.Stats) {
	h.Publish(Event{Type: EventEnded, Data: stats})
}
