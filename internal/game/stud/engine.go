// Package stud implements the stud-poker round engine.
package stud

import (
	"math"
	"math/rand"

	"DegensAgainstDecency/internal/game/card"
	"DegensAgainstDecency/internal/game/dealer"
	"DegensAgainstDecency/internal/game/evaluator"
	"DegensAgainstDecency/internal/game/session"
)

type Config struct {
	SmallBlind    int
	BigBlind      int
	BettingRounds int
	HoleCards     int
	// Hands is the number of hands played before the game ends.
	Hands int
	Seed  int64
}

func DefaultConfig() Config {
	return Config{SmallBlind: 10, BigBlind: 20, BettingRounds: 4, HoleCards: 2, Hands: 1}
}

type Action string

const (
	ActionSmallBlind Action = "small_blind"
	ActionBigBlind   Action = "big_blind"
	ActionFold       Action = "fold"
	ActionCall       Action = "call"
	ActionCheck      Action = "check"
	ActionRaise      Action = "raise"
)

// Result describes how a hand ended. Hands is empty on a fold-out.
type Result struct {
	Winners []string                  `json:"winners"`
	Pot     int                       `json:"pot"`
	Payouts map[string]int            `json:"payouts"`
	FoldOut bool                      `json:"foldOut"`
	Hands   map[string]evaluator.Hand `json:"hands,omitempty"`
}

type Engine struct {
	cfg      Config
	rnd      *rand.Rand
	evaluate func([]card.PokerCard) evaluator.Hand

	// seats is the roster as it was when the hand was dealt.
	seats  []string
	deck   *dealer.Deck[card.PokerCard]
	hands  map[string][]card.PokerCard
	folded map[string]bool
	bets   map[string]int
	acted  map[string]bool

	currentBet   int
	pot          int
	dealerIdx    int
	current      int
	bettingRound int
	handNo       int
	over         bool
	result       *Result
	lastAction   Action
}

func New(cfg Config) *Engine {
	return &Engine{
		cfg:      cfg,
		rnd:      dealer.NewRand(cfg.Seed),
		evaluate: evaluator.Evaluate,
	}
}

// WithEvaluator replaces the hand evaluator used at showdown.
func (e *Engine) WithEvaluator(fn func([]card.PokerCard) evaluator.Hand) *Engine {
	e.evaluate = fn
	return e
}

func (e *Engine) Kind() session.Kind { return session.KindStud }

func (e *Engine) MinPlayers() int { return 2 }

func (e *Engine) Init(s *session.Session) error {
	e.dealerIdx = e.rnd.Intn(s.Size())
	e.deal(s)
	return nil
}

func (e *Engine) deal(s *session.Session) {
	e.handNo++
	e.seats = s.PlayerIDs()
	e.deck = dealer.NewDeck(card.StandardDeck(), e.rnd)
	e.deck.Shuffle()
	e.folded = make(map[string]bool, len(e.seats))
	e.bets = make(map[string]int, len(e.seats))
	e.acted = make(map[string]bool, len(e.seats))
	e.pot = 0
	e.currentBet = 0
	e.bettingRound = 1
	e.over = false
	e.result = nil

	n := len(e.seats)
	sb := (e.dealerIdx + 1) % n
	bb := (e.dealerIdx + 2) % n
	e.post(e.seats[sb], e.cfg.SmallBlind)
	e.post(e.seats[bb], e.cfg.BigBlind)
	e.currentBet = e.bets[e.seats[bb]]
	e.lastAction = ActionBigBlind

	e.hands = e.deck.Deal(e.dealOrder(), e.cfg.HoleCards)
	e.current = (bb + 1) % n
}

// post adds a blind without counting as an action, so the big blind still
// gets to act when the round comes back around.
func (e *Engine) post(id string, amount int) {
	e.bets[id] += amount
	e.pot += amount
}

// dealOrder lists seats starting after the dealer.
func (e *Engine) dealOrder() []string {
	n := len(e.seats)
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, e.seats[(e.dealerIdx+i)%n])
	}
	return out
}

func (e *Engine) active() []string {
	var out []string
	for _, id := range e.dealOrder() {
		if !e.folded[id] {
			out = append(out, id)
		}
	}
	return out
}

func (e *Engine) turn(s *session.Session, playerID string) error {
	if !s.Playing() {
		return ErrNotPlaying
	}
	if e.over {
		return ErrHandOver
	}
	if e.seats[e.current] != playerID {
		return ErrNotYourTurn
	}
	return nil
}

func (e *Engine) Fold(s *session.Session, playerID string) error {
	if err := e.turn(s, playerID); err != nil {
		return err
	}
	e.folded[playerID] = true
	e.lastAction = ActionFold
	e.afterAction(s)
	return nil
}

func (e *Engine) Call(s *session.Session, playerID string) error {
	if err := e.turn(s, playerID); err != nil {
		return err
	}
	delta := e.currentBet - e.bets[playerID]
	e.bets[playerID] += delta
	e.pot += delta
	e.acted[playerID] = true
	e.lastAction = ActionCall
	e.afterAction(s)
	return nil
}

func (e *Engine) Check(s *session.Session, playerID string) error {
	if err := e.turn(s, playerID); err != nil {
		return err
	}
	if e.bets[playerID] < e.currentBet {
		return ErrCannotCheck
	}
	e.acted[playerID] = true
	e.lastAction = ActionCheck
	e.afterAction(s)
	return nil
}

func (e *Engine) Raise(s *session.Session, playerID string, amount int) error {
	if err := e.turn(s, playerID); err != nil {
		return err
	}
	if amount <= 0 || amount > math.MaxInt-e.currentBet {
		return ErrInvalidRaiseAmount
	}
	if e.currentBet+amount-e.bets[playerID] > math.MaxInt-e.pot {
		return ErrInvalidRaiseAmount
	}
	e.currentBet += amount
	e.pot += e.currentBet - e.bets[playerID]
	e.bets[playerID] = e.currentBet
	// everyone else has to answer the raise
	e.acted = map[string]bool{playerID: true}
	e.lastAction = ActionRaise
	e.afterAction(s)
	return nil
}

func (e *Engine) afterAction(s *session.Session) {
	live := e.active()
	if len(live) == 1 {
		e.award(s, live, nil)
		return
	}
	if e.roundComplete(live) {
		e.nextBettingRound(s)
		return
	}
	e.current = e.nextSeat(e.current)
}

func (e *Engine) roundComplete(live []string) bool {
	for _, id := range live {
		if !e.acted[id] || e.bets[id] != e.currentBet {
			return false
		}
	}
	return true
}

// nextSeat walks the seats cyclically from i and returns the next seat that
// has not folded.
func (e *Engine) nextSeat(i int) int {
	n := len(e.seats)
	for step := 1; step <= n; step++ {
		j := (i + step) % n
		if !e.folded[e.seats[j]] {
			return j
		}
	}
	return i
}

func (e *Engine) nextBettingRound(s *session.Session) {
	if e.bettingRound >= e.cfg.BettingRounds {
		e.showdown(s)
		return
	}
	e.bettingRound++
	for _, id := range e.active() {
		if c, ok := e.deck.Draw(); ok {
			e.hands[id] = append(e.hands[id], c)
		}
	}
	e.bets = make(map[string]int, len(e.seats))
	e.acted = make(map[string]bool, len(e.seats))
	e.currentBet = 0
	e.current = e.nextSeat(e.dealerIdx)
}

// ForceShowdown ends the hand with the cards already dealt. Active hands
// short of five cards evaluate as incomplete.
func (e *Engine) ForceShowdown(s *session.Session) error {
	if !s.Playing() {
		return ErrNotPlaying
	}
	if e.over {
		return ErrHandOver
	}
	if live := e.active(); len(live) == 1 {
		e.award(s, live, nil)
		return nil
	}
	e.showdown(s)
	return nil
}

func (e *Engine) showdown(s *session.Session) {
	live := e.active()
	hands := make(map[string]evaluator.Hand, len(live))
	var best int64 = -1
	var winners []string
	for _, id := range live {
		h := e.evaluate(e.hands[id])
		hands[id] = h
		switch {
		case h.Strength > best:
			best = h.Strength
			winners = []string{id}
		case h.Strength == best:
			winners = append(winners, id)
		}
	}
	e.award(s, winners, hands)
}

// award splits the pot between winners. Odd chips go to the first winner
// after the dealer.
func (e *Engine) award(s *session.Session, winners []string, hands map[string]evaluator.Hand) {
	r := &Result{
		Winners: winners,
		Pot:     e.pot,
		Payouts: make(map[string]int, len(winners)),
		FoldOut: hands == nil,
		Hands:   hands,
	}
	share := e.pot / len(winners)
	for _, id := range winners {
		r.Payouts[id] = share
	}
	r.Payouts[winners[0]] += e.pot - share*len(winners)
	for id, amt := range r.Payouts {
		s.AddScore(id, amt)
	}

	e.result = r
	e.over = true
	if e.handNo >= e.cfg.Hands || s.Size() < e.MinPlayers() {
		s.Finish(s.TopScorers())
	}
}

// NextHand rotates the dealer and deals a fresh hand to the current roster.
func (e *Engine) NextHand(s *session.Session) error {
	if !s.Playing() {
		return ErrNotPlaying
	}
	if !e.over {
		return ErrHandInProgress
	}
	// the button moves one seat; if the dealer left, the seat now in its
	// place inherits it
	if i := s.Index(e.seats[e.dealerIdx]); i >= 0 {
		e.dealerIdx = (i + 1) % s.Size()
	} else {
		e.dealerIdx %= s.Size()
	}
	s.NextRound()
	e.deal(s)
	return nil
}

// PlayerLeft folds a departed player. Between hands the seat is simply
// dropped at the next deal.
func (e *Engine) PlayerLeft(s *session.Session, playerID string, _ int) {
	if e.over {
		if s.Size() < e.MinPlayers() {
			s.Finish(s.TopScorers())
		}
		return
	}
	if e.folded[playerID] {
		return
	}
	e.folded[playerID] = true
	delete(e.acted, playerID)
	live := e.active()
	if len(live) == 1 {
		e.award(s, live, nil)
		return
	}
	if e.seats[e.current] == playerID {
		e.current = e.nextSeat(e.current)
	}
	if e.roundComplete(live) {
		e.nextBettingRound(s)
	}
}

func (e *Engine) CurrentPlayer() string {
	if e.over || len(e.seats) == 0 {
		return ""
	}
	return e.seats[e.current]
}

func (e *Engine) Dealer() string {
	if len(e.seats) == 0 {
		return ""
	}
	return e.seats[e.dealerIdx]
}

func (e *Engine) Pot() int { return e.pot }
func (e *Engine) CurrentBet() int { return e.currentBet }
func (e *Engine) Bet(playerID string) int { return e.bets[playerID] }
func (e *Engine) BettingRound() int { return e.bettingRound }
func (e *Engine) HandNumber() int { return e.handNo }
func (e *Engine) HandOver() bool { return e.over }
func (e *Engine) Result() *Result { return e.result }
func (e *Engine) Folded(playerID string) bool { return e.folded[playerID] }

func (e *Engine) Hand(playerID string) []card.PokerCard {
	return append([]card.PokerCard(nil), e.hands[playerID]...)
}

// CanCheck reports whether the current actor owes nothing.
func (e *Engine) CanCheck() bool {
	id := e.CurrentPlayer()
	return id != "" && e.bets[id] >= e.currentBet
}

type SeatView struct {
	PlayerID  string           `json:"playerId"`
	Bet       int              `json:"bet"`
	Folded    bool             `json:"folded"`
	CardCount int              `json:"cardCount"`
	Cards     []card.PokerCard `json:"cards,omitempty"`
}

type View struct {
	Hand         int        `json:"hand"`
	BettingRound int        `json:"bettingRound"`
	Dealer       string     `json:"dealer"`
	Current      string     `json:"current"`
	CurrentBet   int        `json:"currentBet"`
	Pot          int        `json:"pot"`
	ToCall       int        `json:"toCall"`
	LastAction   Action     `json:"lastAction"`
	Seats        []SeatView `json:"seats"`
	Result       *Result    `json:"result,omitempty"`
}

func (e *Engine) View(viewer string) any {
	v := View{
		Hand:         e.handNo,
		BettingRound: e.bettingRound,
		Dealer:       e.Dealer(),
		Current:      e.CurrentPlayer(),
		CurrentBet:   e.currentBet,
		Pot:          e.pot,
		LastAction:   e.lastAction,
		Result:       e.result,
	}
	if _, seated := e.hands[viewer]; seated && !e.folded[viewer] && !e.over {
		v.ToCall = e.currentBet - e.bets[viewer]
	}
	for _, id := range e.seats {
		sv := SeatView{
			PlayerID:  id,
			Bet:       e.bets[id],
			Folded:    e.folded[id],
			CardCount: len(e.hands[id]),
		}
		if id == viewer {
			sv.Cards = e.Hand(id)
		}
		v.Seats = append(v.Seats, sv)
	}
	return v
}
