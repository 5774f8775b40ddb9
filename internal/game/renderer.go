package game

// Renderer is the presentation side of the engine. Implementations draw the
// board; the engine only tells them what changed.
type Renderer[V comparable] interface {
	// RenderBoard is called on every start with card ids in board order.
	RenderBoard(board []int)
	CardRevealed(id int, value V)
	CardConcealed(id int)
	CardMatched(id int, value V)
	// HighlightAll toggles the hint highlight on every card.
	HighlightAll(on bool)
}

type nopRenderer[V comparable] struct{}

func (nopRenderer[V]) RenderBoard([]int)   {}
func (nopRenderer[V]) CardRevealed(int, V) {}
func (nopRenderer[V]) CardConcealed(int)   {}
func (nopRenderer[V]) CardMatched(int, V)  {}
func (nopRenderer[V]) HighlightAll(bool)   {}
