package dealer

import (
	"sort"
	"testing"

	"DegensAgainstDecency/internal/game/card"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 工具：检查是否有重复牌
func hasDuplicates(cards []card.PokerCard) bool {
	seen := make(map[card.PokerCard]bool)
	for _, c := range cards {
		if seen[c] {
			return true
		}
		seen[c] = true
	}
	return false
}

func sortCards(cards []card.PokerCard) {
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Suit != cards[j].Suit {
			return cards[i].Suit < cards[j].Suit
		}
		return cards[i].Rank < cards[j].Rank
	})
}

func TestShuffleIsPermutation(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		d := NewDeck(card.StandardDeck(), NewRand(seed))
		d.Shuffle()

		got := d.Cards()
		require.Len(t, got, 52)
		assert.False(t, hasDuplicates(got))

		want := card.StandardDeck()
		sortCards(got)
		sortCards(want)
		assert.Equal(t, want, got, "seed %d lost or created a card", seed)
	}
}

func TestShuffleSeedDeterminism(t *testing.T) {
	d1 := NewDeck(card.StandardDeck(), NewRand(42))
	d2 := NewDeck(card.StandardDeck(), NewRand(42))
	d1.Shuffle()
	d2.Shuffle()
	assert.Equal(t, d1.Cards(), d2.Cards(), "same seed should give same order")

	d3 := NewDeck(card.StandardDeck(), NewRand(99))
	d3.Shuffle()
	assert.NotEqual(t, d1.Cards(), d3.Cards())
}

func TestNewDeckDoesNotAlias(t *testing.T) {
	src := card.StandardDeck()
	d := NewDeck(src, NewRand(1))
	d.Shuffle()
	assert.Equal(t, card.StandardDeck(), src)
}

func TestDrawPopsFromEnd(t *testing.T) {
	d := NewDeck([]int{1, 2, 3}, NewRand(1))
	c, ok := d.Draw()
	assert.True(t, ok)
	assert.Equal(t, 3, c)
	assert.Equal(t, 2, d.Len())
}

func TestDrawExhaustion(t *testing.T) {
	d := NewDeck([]int{1}, NewRand(1))
	_, ok := d.Draw()
	require.True(t, ok)

	_, ok = d.Draw()
	assert.False(t, ok)
	assert.True(t, d.Empty())
	assert.Empty(t, d.DrawN(3))
}

func TestDealRoundRobin(t *testing.T) {
	d := NewDeck(card.StandardDeck(), NewRand(1))
	d.Shuffle()
	players := []string{"A", "B", "C"}
	hands := d.Deal(players, 2)

	all := []card.PokerCard{}
	for _, p := range players {
		assert.Len(t, hands[p], 2, p)
		all = append(all, hands[p]...)
	}
	assert.False(t, hasDuplicates(all))
	assert.Equal(t, 52-6, d.Len())
}

func TestDealShortDeck(t *testing.T) {
	d := NewDeck([]int{1, 2, 3, 4, 5}, NewRand(1))
	hands := d.Deal([]string{"A", "B", "C"}, 2)

	assert.Len(t, hands["A"], 2)
	assert.Len(t, hands["B"], 2)
	assert.Len(t, hands["C"], 1)
	assert.True(t, d.Empty())
}
