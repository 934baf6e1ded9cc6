package evaluator

import (
	"math/rand"
	"testing"

	"DegensAgainstDecency/internal/game/card"

	"github.com/paulhankin/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eval(t *testing.T, list string) Hand {
	t.Helper()
	return Evaluate(card.MustParsePoker(list))
}

func TestCategories(t *testing.T) {
	cases := []struct {
		hand string
		want Category
		desc string
	}{
		{"As Ks Qs Js Ts", StraightFlush, "Royal Flush"},
		{"9h 8h 7h 6h 5h", StraightFlush, "Straight Flush, Nine high"},
		{"Ac Ad Ah As 2s", FourOfAKind, "Four of a Kind, Aces"},
		{"Kc Kd Kh 2s 2d", FullHouse, "Full House, Kings over Twos"},
		{"2d 7d 9d Jd Ad", Flush, "Flush, Ace high"},
		{"6c 7d 8h 9s Tc", Straight, "Straight, Ten high"},
		{"2c 3d 4h 5s Ac", Straight, "Straight, Five high"},
		{"7c 7d 7h Ks 2d", ThreeOfAKind, "Three of a Kind, Sevens"},
		{"Jc Jd 4h 4s 9d", TwoPair, "Two Pair, Jacks and Fours"},
		{"Qc Qd 4h 8s 9d", OnePair, "Pair of Queens"},
		{"Kc 2d 4h 8s 9d", HighCard, "High Card, King"},
	}
	for _, tc := range cases {
		h := eval(t, tc.hand)
		assert.Equal(t, tc.want, h.Category, tc.hand)
		assert.Equal(t, tc.desc, h.Description, tc.hand)
		assert.Len(t, h.Best, 5, tc.hand)
	}
}

func TestWheelIsLowestStraight(t *testing.T) {
	wheel := eval(t, "2c 3d 4h 5s Ac")
	ten := eval(t, "6c 7d 8h 9s 10c")
	six := eval(t, "2c 3d 4h 5s 6c")

	require.Equal(t, Straight, wheel.Category)
	assert.Equal(t, 5, wheel.High)
	assert.Equal(t, 10, ten.High)
	assert.True(t, ten.Beats(wheel))
	assert.True(t, six.Beats(wheel))
	assert.True(t, wheel.Beats(eval(t, "Ac Ad Kh Qs Jc")), "any straight beats a pair")
}

func TestAceHighIsNotWrapStraight(t *testing.T) {
	h := eval(t, "Qc Kd Ah 2s 3c")
	assert.Equal(t, HighCard, h.Category)
}

func TestQuadsBeatFullHouse(t *testing.T) {
	quads := eval(t, "As Ad Ah Ac 2s")
	assert.Equal(t, FourOfAKind, quads.Category)

	for _, fh := range []string{"Kc Kd Kh As Ad", "2c 2d 2h 3s 3d", "Ac Ad Ah Ks Kd"} {
		h := eval(t, fh)
		require.Equal(t, FullHouse, h.Category, fh)
		assert.True(t, quads.Beats(h), fh)
	}
	assert.True(t, eval(t, "2c 2d 2h 2s 3d").Beats(eval(t, "Ac Ad Ah Ks Kd")))
}

func TestCategoryDominatesKickers(t *testing.T) {
	ordered := []string{
		"Ac Kd Qh Js 9c", // best high card
		"2c 2d 3h 4s 5c", // worst pair
		"2c 2d 3h 3s 4c",
		"2c 2d 2h 3s 4c",
		"2c 3d 4h 5s Ac",
		"2d 3d 4d 5d 7d",
		"2c 2d 2h 3s 3c",
		"2c 2d 2h 2s 3c",
		"Ad 2d 3d 4d 5d",
	}
	for i := 1; i < len(ordered); i++ {
		lo, hi := eval(t, ordered[i-1]), eval(t, ordered[i])
		assert.True(t, hi.Beats(lo), "%s should beat %s", ordered[i], ordered[i-1])
		assert.Greater(t, hi.Category, lo.Category)
	}
}

func TestKickersBreakTies(t *testing.T) {
	assert.True(t, eval(t, "Qc Qd Ah 8s 9d").Beats(eval(t, "Qh Qs Kh 8c 9c")))
	assert.True(t, eval(t, "Jc Jd 4h 4s Ad").Beats(eval(t, "Jh Js 4c 4d Kd")))
	assert.True(t, eval(t, "Kc Kd 2h 2s 3d").Beats(eval(t, "Qc Qd Jh Js Ad")))

	a, b := eval(t, "Kc Kd 9h 8s 3d"), eval(t, "Kh Ks 9c 8d 3c")
	assert.Equal(t, a.Strength, b.Strength, "suits never break ties")
}

func TestStrengthEncoding(t *testing.T) {
	h := eval(t, "Qc Qd 4h 8s 9d")
	// category 2, kickers Q 9 8 4
	want := int64(2)*1e10 + 12*1e8 + 9*1e6 + 8*1e4 + 4*1e2
	assert.Equal(t, want, h.Strength)
}

func TestIncomplete(t *testing.T) {
	for _, list := range []string{"", "As", "As Ks Qs Js"} {
		h := eval(t, list)
		assert.Equal(t, Incomplete, h.Category, list)
		assert.Equal(t, int64(0), h.Strength, list)
		assert.Equal(t, "incomplete", h.Category.String())
	}
	assert.True(t, eval(t, "2c 3d 4h 5s 7c").Beats(eval(t, "As Ad Ah Ac")))
}

func TestBestOfSeven(t *testing.T) {
	h := eval(t, "As Ah Kc Kd 2s 3h 4c")
	assert.Equal(t, TwoPair, h.Category)

	h = eval(t, "2c 3d 4h 5s 6c 7d 8h")
	assert.Equal(t, Straight, h.Category)
	assert.Equal(t, 8, h.High)

	h = eval(t, "2h 9h Jh Kh 3h Ac Ad")
	assert.Equal(t, Flush, h.Category)
}

func TestDeterministicAndPure(t *testing.T) {
	cards := card.MustParsePoker("Kc 2d 4h 8s 9d Ts")
	before := append([]card.PokerCard(nil), cards...)
	a := Evaluate(cards)
	b := Evaluate(cards)
	assert.Equal(t, a, b)
	assert.Equal(t, before, cards, "input must not be reordered")
}

func toOracle(t *testing.T, c card.PokerCard) poker.Card {
	t.Helper()
	rank := c.Rank
	if rank == card.Ace {
		rank = 1
	}
	oc, err := poker.MakeCard(poker.Suit(c.Suit), poker.Rank(rank))
	require.NoError(t, err)
	return oc
}

// Cross-checks ordering of random seven-card hands against an independent
// evaluator.
func TestOrderingMatchesOracle(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	deck := card.StandardDeck()

	deal := func() ([]card.PokerCard, [7]poker.Card) {
		rnd.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
		mine := append([]card.PokerCard(nil), deck[:7]...)
		var theirs [7]poker.Card
		for i, c := range mine {
			theirs[i] = toOracle(t, c)
		}
		return mine, theirs
	}

	for i := 0; i < 2000; i++ {
		a, oa := deal()
		b, ob := deal()
		ha, hb := Evaluate(a), Evaluate(b)
		sa, sb := poker.Eval7(&oa), poker.Eval7(&ob)

		switch {
		case sa > sb:
			assert.True(t, ha.Beats(hb), "%v vs %v", a, b)
		case sa < sb:
			assert.True(t, hb.Beats(ha), "%v vs %v", a, b)
		default:
			assert.Equal(t, ha.Strength, hb.Strength, "%v vs %v", a, b)
		}
	}
}
