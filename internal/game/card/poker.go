package card

import (
	"fmt"
	"strconv"
	"strings"
)

// Suit 花色 (0:Club, 1:Diamond, 2:Heart, 3:Spade)
type Suit int

const (
	Club Suit = iota
	Diamond
	Heart
	Spade
)

var suitSymbols = []string{"♣", "♦", "♥", "♠"}

func (s Suit) String() string {
	if s < Club || s > Spade {
		return "?"
	}
	return suitSymbols[s]
}

// Rank values: 2-10 literal, J=11, Q=12, K=13, A=14.
const (
	Jack  = 11
	Queen = 12
	King  = 13
	Ace   = 14
)

// PokerCard is immutable once dealt.
type PokerCard struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"`
}

func (c PokerCard) Value() int { return c.Rank }

func (c PokerCard) String() string {
	return RankName(c.Rank) + c.Suit.String()
}

// RankName 返回点数的短名称，用于渲染
func RankName(rank int) string {
	switch rank {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	}
	return strconv.Itoa(rank)
}

// StandardDeck returns 4 suits x 13 ranks in a fixed order.
func StandardDeck() []PokerCard {
	deck := make([]PokerCard, 0, 52)
	for s := Club; s <= Spade; s++ {
		for r := 2; r <= Ace; r++ {
			deck = append(deck, PokerCard{Suit: s, Rank: r})
		}
	}
	return deck
}

// ParsePoker parses short notation such as "As", "Td", "10h", "2c".
func ParsePoker(str string) (PokerCard, error) {
	if len(str) < 2 {
		return PokerCard{}, fmt.Errorf("invalid card string: %q", str)
	}
	var suit Suit
	switch str[len(str)-1] {
	case 'c', 'C':
		suit = Club
	case 'd', 'D':
		suit = Diamond
	case 'h', 'H':
		suit = Heart
	case 's', 'S':
		suit = Spade
	default:
		return PokerCard{}, fmt.Errorf("invalid suit in %q", str)
	}

	rankStr := strings.ToUpper(str[:len(str)-1])
	var rank int
	switch rankStr {
	case "A":
		rank = Ace
	case "K":
		rank = King
	case "Q":
		rank = Queen
	case "J":
		rank = Jack
	case "T":
		rank = 10
	default:
		n, err := strconv.Atoi(rankStr)
		if err != nil || n < 2 || n > 10 {
			return PokerCard{}, fmt.Errorf("invalid rank in %q", str)
		}
		rank = n
	}
	return PokerCard{Suit: suit, Rank: rank}, nil
}

// MustParsePoker parses a space separated list and panics on bad input. Tests only.
func MustParsePoker(list string) []PokerCard {
	fields := strings.Fields(list)
	out := make([]PokerCard, 0, len(fields))
	for _, f := range fields {
		c, err := ParsePoker(f)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}
