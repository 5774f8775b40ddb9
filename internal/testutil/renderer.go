package testutil

import (
	"fmt"
	"slices"
	"sync"
)

// RecordingRenderer captures every renderer call as a short string such as
// "reveal 3" or "highlight on".
type RecordingRenderer[V comparable] struct {
	mu    sync.Mutex
	calls []string
	board []int
}

func (r *RecordingRenderer[V]) RenderBoard(board []int) {
	r.record("board %d", len(board))
	r.mu.Lock()
	r.board = slices.Clone(board)
	r.mu.Unlock()
}

func (r *RecordingRenderer[V]) CardRevealed(id int, _ V) { r.record("reveal %d", id) }
func (r *RecordingRenderer[V]) CardConcealed(id int)     { r.record("conceal %d", id) }
func (r *RecordingRenderer[V]) CardMatched(id int, _ V)  { r.record("match %d", id) }

func (r *RecordingRenderer[V]) HighlightAll(on bool) {
	if on {
		r.record("highlight on")
		return
	}
	r.record("highlight off")
}

// Calls returns a copy of the recorded calls.
func (r *RecordingRenderer[V]) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Board returns the last board passed to RenderBoard.
func (r *RecordingRenderer[V]) Board() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.board)
}

func (r *RecordingRenderer[V]) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}
