package game

import (
	"slices"
)

// Rand is the source PlaceCards draws positions from. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// PlaceCards returns card ids in board order using random insertion: cards
// are taken by ascending id, the first is appended, and every later card k
// is inserted in front of whichever card currently sits at board position
// IntN(k). The result is deliberately not a uniform shuffle.
//
// Card ids must be contiguous from zero, as produced by deck construction.
func PlaceCards[V comparable](cards []Card[V], r Rand) []int {
	ordered := slices.Clone(cards)
	slices.SortFunc(ordered, func(a, b Card[V]) int { return a.ID - b.ID })

	board := make([]int, 0, len(ordered))
	for _, c := range ordered {
		if c.ID == 0 {
			board = append(board, c.ID)
			continue
		}
		pos := r.IntN(c.ID)
		board = slices.Insert(board, pos, c.ID)
	}
	return board
}

// BuildDeck creates cardCount cards where card i carries values[i/groupSize].
func BuildDeck[V comparable](values []V, cardCount, groupSize int) []Card[V] {
	cards := make([]Card[V], cardCount)
	for id := range cards {
		cards[id] = Card[V]{ID: id, Value: values[id/groupSize]}
	}
	return cards
}
