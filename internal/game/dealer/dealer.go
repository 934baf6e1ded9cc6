package dealer

import (
	"math/rand"
	"time"
)

// Deck 只负责洗牌与发牌（无规则判断），由单个引擎独占
type Deck[T any] struct {
	cards []T
	rnd   *rand.Rand
}

// NewRand returns a seeded source; seed 0 means time-based.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// NewDeck copies cards so the caller's slice is never aliased.
func NewDeck[T any](cards []T, rnd *rand.Rand) *Deck[T] {
	if rnd == nil {
		rnd = NewRand(0)
	}
	own := make([]T, len(cards))
	copy(own, cards)
	return &Deck[T]{cards: own, rnd: rnd}
}

// Shuffle is a uniform Fisher-Yates permutation.
func (d *Deck[T]) Shuffle() {
	d.rnd.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw pops from the end. ok is false once the deck is exhausted.
func (d *Deck[T]) Draw() (c T, ok bool) {
	n := len(d.cards)
	if n == 0 {
		return c, false
	}
	c = d.cards[n-1]
	d.cards = d.cards[:n-1]
	return c, true
}

// DrawN draws up to n cards.
func (d *Deck[T]) DrawN(n int) []T {
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		c, ok := d.Draw()
		if !ok {
			break
		}
		out = append(out, c)
	}
	return out
}

func (d *Deck[T]) Len() int { return len(d.cards) }

func (d *Deck[T]) Empty() bool { return len(d.cards) == 0 }

// Cards returns a copy of the remaining cards, top of deck last.
func (d *Deck[T]) Cards() []T {
	out := make([]T, len(d.cards))
	copy(out, d.cards)
	return out
}

// Deal 轮流发牌：每轮每个玩家一张，共 n 轮。牌堆耗尽时剩余玩家少拿牌
func (d *Deck[T]) Deal(players []string, n int) map[string][]T {
	out := make(map[string][]T, len(players))
	for _, p := range players {
		out[p] = make([]T, 0, n)
	}
	for i := 0; i < n; i++ {
		for _, p := range players {
			c, ok := d.Draw()
			if !ok {
				return out
			}
			out[p] = append(out[p], c)
		}
	}
	return out
}
