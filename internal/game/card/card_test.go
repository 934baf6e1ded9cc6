package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardDeckUnique(t *testing.T) {
	deck := StandardDeck()
	require.Len(t, deck, 52)

	seen := make(map[PokerCard]bool)
	for _, c := range deck {
		assert.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
		assert.GreaterOrEqual(t, c.Rank, 2)
		assert.LessOrEqual(t, c.Rank, Ace)
	}
}

func TestParsePoker(t *testing.T) {
	cases := map[string]PokerCard{
		"As":  {Suit: Spade, Rank: Ace},
		"Td":  {Suit: Diamond, Rank: 10},
		"10h": {Suit: Heart, Rank: 10},
		"2c":  {Suit: Club, Rank: 2},
		"kH":  {Suit: Heart, Rank: King},
	}
	for in, want := range cases {
		got, err := ParsePoker(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "A", "1s", "11h", "Ax", "Zs"} {
		_, err := ParsePoker(bad)
		assert.Error(t, err, bad)
	}
}

func TestPokerCardString(t *testing.T) {
	assert.Equal(t, "A♠", PokerCard{Suit: Spade, Rank: Ace}.String())
	assert.Equal(t, "10♦", PokerCard{Suit: Diamond, Rank: 10}.String())
	assert.Equal(t, "?", Suit(9).String())
}

func TestIndexOf(t *testing.T) {
	cards := []TextCard{{ID: "a"}, {ID: "b"}}
	assert.Equal(t, 1, IndexOf(cards, "b"))
	assert.Equal(t, -1, IndexOf(cards, "z"))
}
