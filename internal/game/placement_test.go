package game_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/matchflash/internal/game"
)

// scriptedRand returns preset positions and records the bounds it was asked for.
type scriptedRand struct {
	picks  []int
	bounds []int
}

func (r *scriptedRand) IntN(n int) int {
	r.bounds = append(r.bounds, n)
	p := r.picks[0]
	r.picks = r.picks[1:]
	return p
}

func TestPlaceCards_InsertsBeforeCurrentBoardPosition(t *testing.T) {
	cards := game.BuildDeck([]string{"A", "B"}, 4, 2)
	r := &scriptedRand{picks: []int{0, 1, 0}}

	board := game.PlaceCards(cards, r)

	// [0] -> [1 0] -> [1 2 0] -> [3 1 2 0]
	assert.Equal(t, []int{3, 1, 2, 0}, board)
	assert.Equal(t, []int{1, 2, 3}, r.bounds)
}

func TestPlaceCards_UsesBoardOrderNotConstructionOrder(t *testing.T) {
	cards := game.BuildDeck([]string{"A", "B", "C"}, 6, 2)
	// [0] -> [1 0]; card 2 at pos 1 (card 0) -> [1 2 0]
	// card 3 at pos 2 (card 0) -> [1 2 3 0]
	// card 4 at pos 0 (card 1) -> [4 1 2 3 0]
	// card 5 at pos 4 (card 0) -> [4 1 2 3 5 0]
	r := &scriptedRand{picks: []int{0, 1, 2, 0, 4}}

	assert.Equal(t, []int{4, 1, 2, 3, 5, 0}, game.PlaceCards(cards, r))
}

func TestPlaceCards_IgnoresInputOrder(t *testing.T) {
	cards := game.BuildDeck([]string{"A", "B"}, 4, 2)
	reversed := []game.Card[string]{cards[3], cards[2], cards[1], cards[0]}

	a := game.PlaceCards(cards, &scriptedRand{picks: []int{0, 0, 2}})
	b := game.PlaceCards(reversed, &scriptedRand{picks: []int{0, 0, 2}})
	assert.Equal(t, a, b)
}

func TestPlaceCards_IsPermutation(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	cards := game.BuildDeck([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, 24, 2)

	for i := 0; i < 50; i++ {
		board := game.PlaceCards(cards, r)
		require.Len(t, board, 24)
		seen := map[int]bool{}
		for _, id := range board {
			assert.False(t, seen[id], "id %d placed twice", id)
			seen[id] = true
		}
	}
}

func TestPlaceCards_Empty(t *testing.T) {
	assert.Empty(t, game.PlaceCards([]game.Card[string]{}, &scriptedRand{}))
}

func TestBuildDeck(t *testing.T) {
	cards := game.BuildDeck([]string{"A", "B", "C"}, 9, 3)
	require.Len(t, cards, 9)
	want := []string{"A", "A", "A", "B", "B", "B", "C", "C", "C"}
	for i, c := range cards {
		assert.Equal(t, i, c.ID)
		assert.Equal(t, want[i], c.Value)
	}
}
