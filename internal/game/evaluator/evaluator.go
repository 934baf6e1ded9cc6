// Package evaluator ranks poker hands into a totally ordered strength value.
//
// Strength = category × 100^5 + Σ kicker_i × 100^(4-i), where kickers are
// listed from most to least significant. Comparing two hands reduces to
// comparing two integers.
package evaluator

import (
	"fmt"
	"sort"

	"DegensAgainstDecency/internal/game/card"
)

type Category int

const (
	Incomplete Category = iota
	HighCard
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

var categoryNames = map[Category]string{
	Incomplete:    "incomplete",
	HighCard:      "high-card",
	OnePair:       "one-pair",
	TwoPair:       "two-pair",
	ThreeOfAKind:  "three-of-a-kind",
	Straight:      "straight",
	Flush:         "flush",
	FullHouse:     "full-house",
	FourOfAKind:   "four-of-a-kind",
	StraightFlush: "straight-flush",
}

func (c Category) String() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return "unknown"
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

const (
	handSize = 5
	base     = 100
)

// Hand is the evaluation result.
type Hand struct {
	Category    Category         `json:"category"`
	Strength    int64            `json:"strength"`
	Description string           `json:"description"`
	High        int              `json:"high"`
	Best        []card.PokerCard `json:"best,omitempty"`
}

// Beats reports whether h is strictly stronger than o.
func (h Hand) Beats(o Hand) bool { return h.Strength > o.Strength }

// Evaluate ranks cards. Fewer than five cards give an incomplete hand with
// strength 0. More than five are ranked by their best five-card subset.
func Evaluate(cards []card.PokerCard) Hand {
	if len(cards) < handSize {
		return Hand{Category: Incomplete, Description: "Incomplete hand"}
	}
	if len(cards) == handSize {
		var five [handSize]card.PokerCard
		copy(five[:], cards)
		return evaluate5(five)
	}

	var best Hand
	found := false
	var idx [handSize]int
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == handSize {
			var five [handSize]card.PokerCard
			for i, j := range idx {
				five[i] = cards[j]
			}
			h := evaluate5(five)
			if !found || h.Beats(best) {
				best, found = h, true
			}
			return
		}
		for i := start; i <= len(cards)-(handSize-depth); i++ {
			idx[depth] = i
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
	return best
}

type rankGroup struct {
	rank  int
	count int
}

func evaluate5(five [handSize]card.PokerCard) Hand {
	counts := make(map[int]int, handSize)
	flush := true
	for i, c := range five {
		counts[c.Rank]++
		if i > 0 && c.Suit != five[0].Suit {
			flush = false
		}
	}

	groups := make([]rankGroup, 0, len(counts))
	for r, n := range counts {
		groups = append(groups, rankGroup{rank: r, count: n})
	}
	// 先按张数、再按点数降序
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	straightHigh := 0
	if len(groups) == handSize {
		hi, lo := groups[0].rank, groups[handSize-1].rank
		switch {
		case hi-lo == handSize-1:
			straightHigh = hi
		case hi == card.Ace && groups[1].rank == 5 && lo == 2:
			// wheel: A-5-4-3-2 plays as five high
			straightHigh = 5
		}
	}

	var cat Category
	var kickers []int
	switch {
	case straightHigh > 0 && flush:
		cat, kickers = StraightFlush, []int{straightHigh}
	case groups[0].count == 4:
		cat, kickers = FourOfAKind, ranksOf(groups)
	case groups[0].count == 3 && groups[1].count == 2:
		cat, kickers = FullHouse, ranksOf(groups)
	case flush:
		cat, kickers = Flush, ranksOf(groups)
	case straightHigh > 0:
		cat, kickers = Straight, []int{straightHigh}
	case groups[0].count == 3:
		cat, kickers = ThreeOfAKind, ranksOf(groups)
	case groups[0].count == 2 && groups[1].count == 2:
		cat, kickers = TwoPair, ranksOf(groups)
	case groups[0].count == 2:
		cat, kickers = OnePair, ranksOf(groups)
	default:
		cat, kickers = HighCard, ranksOf(groups)
	}

	return Hand{
		Category:    cat,
		Strength:    encode(cat, kickers),
		Description: describe(cat, kickers),
		High:        kickers[0],
		Best:        sortedBest(five, counts),
	}
}

func ranksOf(groups []rankGroup) []int {
	out := make([]int, len(groups))
	for i, g := range groups {
		out[i] = g.rank
	}
	return out
}

func encode(cat Category, kickers []int) int64 {
	strength := int64(cat)
	for i := 0; i < handSize; i++ {
		strength *= base
		if i < len(kickers) {
			strength += int64(kickers[i])
		}
	}
	return strength
}

// sortedBest orders the five cards by group size then rank, for display.
func sortedBest(five [handSize]card.PokerCard, counts map[int]int) []card.PokerCard {
	out := append([]card.PokerCard(nil), five[:]...)
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := counts[out[i].Rank], counts[out[j].Rank]
		if ci != cj {
			return ci > cj
		}
		return out[i].Rank > out[j].Rank
	})
	return out
}

var rankWords = map[int][2]string{
	2:          {"Two", "Twos"},
	3:          {"Three", "Threes"},
	4:          {"Four", "Fours"},
	5:          {"Five", "Fives"},
	6:          {"Six", "Sixes"},
	7:          {"Seven", "Sevens"},
	8:          {"Eight", "Eights"},
	9:          {"Nine", "Nines"},
	10:         {"Ten", "Tens"},
	card.Jack:  {"Jack", "Jacks"},
	card.Queen: {"Queen", "Queens"},
	card.King:  {"King", "Kings"},
	card.Ace:   {"Ace", "Aces"},
}

func one(r int) string { return rankWords[r][0] }
func many(r int) string { return rankWords[r][1] }

func describe(cat Category, k []int) string {
	switch cat {
	case StraightFlush:
		if k[0] == card.Ace {
			return "Royal Flush"
		}
		return fmt.Sprintf("Straight Flush, %s high", one(k[0]))
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", many(k[0]))
	case FullHouse:
		return fmt.Sprintf("Full House, %s over %s", many(k[0]), many(k[1]))
	case Flush:
		return fmt.Sprintf("Flush, %s high", one(k[0]))
	case Straight:
		return fmt.Sprintf("Straight, %s high", one(k[0]))
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", many(k[0]))
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", many(k[0]), many(k[1]))
	case OnePair:
		return fmt.Sprintf("Pair of %s", many(k[0]))
	case HighCard:
		return fmt.Sprintf("High Card, %s", one(k[0]))
	}
	return "Incomplete hand"
}
