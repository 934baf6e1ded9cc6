// Package exchange implements the judge-and-submit card game.
package exchange

import (
	"context"
	"math/rand"
	"time"

	"DegensAgainstDecency/internal/content"
	"DegensAgainstDecency/internal/game/card"
	"DegensAgainstDecency/internal/game/dealer"
	"DegensAgainstDecency/internal/game/session"
)

type Phase string

const (
	PhaseDeal     Phase = "deal"
	PhaseSubmit   Phase = "submit"
	PhaseJudging  Phase = "judging"
	PhaseResolved Phase = "resolved"
	PhaseEnded    Phase = "ended"
)

type Config struct {
	HandSize       int
	MaxRounds      int
	ContentCount   int
	MinQuestions   int
	MinAnswers     int
	ContentTimeout time.Duration
	Seed           int64
}

func DefaultConfig() Config {
	return Config{
		HandSize:       7,
		MaxRounds:      10,
		ContentCount:   50,
		MinQuestions:   10,
		MinAnswers:     30,
		ContentTimeout: 5 * time.Second,
	}
}

// Submission is one answer card played this round.
type Submission struct {
	PlayerID string        `json:"playerId"`
	Card     card.TextCard `json:"card"`
}

// Engine 卡牌交换游戏状态机，手牌与牌堆只归引擎所有
type Engine struct {
	cfg Config
	src content.Source
	rnd *rand.Rand

	questions *dealer.Deck[card.TextCard]
	answers   *dealer.Deck[card.TextCard]
	hands     map[string][]card.TextCard

	submissions map[string]card.TextCard
	order       []string

	judgeIdx    int
	judgeID     string
	question    card.TextCard
	phase       Phase
	roundWinner string
}

func New(cfg Config, src content.Source) *Engine {
	return &Engine{
		cfg:         cfg,
		src:         src,
		rnd:         dealer.NewRand(cfg.Seed),
		hands:       make(map[string][]card.TextCard),
		submissions: make(map[string]card.TextCard),
		phase:       PhaseDeal,
	}
}

func (e *Engine) Kind() session.Kind { return session.KindExchange }

func (e *Engine) MinPlayers() int { return 3 }

// Init loads content once, deals hands and opens round one.
func (e *Engine) Init(s *session.Session) error {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.ContentTimeout)
	defer cancel()

	qs := content.Acquire(ctx, e.src, card.Question, e.cfg.ContentCount, e.cfg.MinQuestions)
	as := content.Acquire(ctx, e.src, card.Answer, e.cfg.ContentCount, e.cfg.MinAnswers)

	e.questions = dealer.NewDeck(qs, e.rnd)
	e.answers = dealer.NewDeck(as, e.rnd)
	e.questions.Shuffle()
	e.answers.Shuffle()

	e.hands = e.answers.Deal(s.PlayerIDs(), e.cfg.HandSize)
	e.judgeIdx = 0
	e.judgeID = s.PlayerAt(0).ID
	if !e.openRound() {
		e.end(s)
	}
	return nil
}

// openRound 抽一张问题牌并清空提交；问题牌用尽时返回 false
func (e *Engine) openRound() bool {
	e.submissions = make(map[string]card.TextCard)
	e.order = nil
	e.roundWinner = ""
	q, ok := e.questions.Draw()
	if !ok {
		return false
	}
	e.question = q
	e.phase = PhaseSubmit
	return true
}

func (e *Engine) Submit(s *session.Session, playerID, cardID string) error {
	if !s.Playing() {
		return ErrNotPlaying
	}
	if !s.HasPlayer(playerID) {
		return ErrUnknownPlayer
	}
	if playerID == e.judgeID {
		return ErrJudgeCannotSubmit
	}
	if _, ok := e.submissions[playerID]; ok {
		return ErrDuplicateSubmission
	}
	if e.phase != PhaseSubmit && e.phase != PhaseJudging {
		return ErrRoundClosed
	}
	hand := e.hands[playerID]
	idx := card.IndexOf(hand, cardID)
	if idx < 0 {
		return ErrCardNotInHand
	}

	played := hand[idx]
	hand = append(hand[:idx:idx], hand[idx+1:]...)
	if c, ok := e.answers.Draw(); ok {
		hand = append(hand, c)
	}
	e.hands[playerID] = hand
	e.submissions[playerID] = played
	e.order = append(e.order, playerID)
	e.checkReady(s)
	return nil
}

func (e *Engine) checkReady(s *session.Session) {
	if e.phase == PhaseSubmit && e.judgeID != "" && len(e.submissions) >= s.Size()-1 {
		e.phase = PhaseJudging
	}
}

// Judge awards one point to the chosen submitter once every submission is
// in. Each round is scored once.
func (e *Engine) Judge(s *session.Session, judgeID, chosenPlayerID string) error {
	if !s.Playing() {
		return ErrNotPlaying
	}
	if e.judgeID == "" || judgeID != e.judgeID {
		return ErrNotJudge
	}
	switch e.phase {
	case PhaseResolved:
		return ErrAlreadyJudged
	case PhaseSubmit:
		return ErrAwaitingSubmissions
	}
	if _, ok := e.submissions[chosenPlayerID]; !ok {
		return ErrInvalidChoice
	}
	s.AddScore(chosenPlayerID, 1)
	e.roundWinner = chosenPlayerID
	e.phase = PhaseResolved
	return nil
}

// AdvanceRound moves to the next round or ends the game. It is safe to call
// at any time, with or without submissions.
func (e *Engine) AdvanceRound(s *session.Session) error {
	if !s.Playing() {
		return ErrNotPlaying
	}
	if s.NextRound() > e.cfg.MaxRounds {
		e.end(s)
		return nil
	}
	e.rotateJudge(s)
	if !e.openRound() {
		e.end(s)
	}
	return nil
}

func (e *Engine) rotateJudge(s *session.Session) {
	n := s.Size()
	if e.judgeID == "" {
		// the seat at judgeIdx already holds the player after the one who left
		e.judgeIdx %= n
	} else {
		e.judgeIdx = (s.Index(e.judgeID) + 1) % n
	}
	e.judgeID = s.PlayerAt(e.judgeIdx).ID
}

func (e *Engine) end(s *session.Session) {
	e.phase = PhaseEnded
	s.Finish(s.TopScorers())
}

func (e *Engine) PlayerLeft(s *session.Session, playerID string, idx int) {
	delete(e.hands, playerID)
	if _, ok := e.submissions[playerID]; ok {
		delete(e.submissions, playerID)
		for i, id := range e.order {
			if id == playerID {
				e.order = append(e.order[:i], e.order[i+1:]...)
				break
			}
		}
		if e.roundWinner == playerID {
			e.roundWinner = ""
		}
	}

	switch {
	case playerID == e.judgeID:
		e.judgeID = ""
		e.judgeIdx = idx
	case idx < e.judgeIdx:
		e.judgeIdx--
	}

	if s.Size() < e.MinPlayers() {
		e.end(s)
		return
	}
	e.checkReady(s)
}

func (e *Engine) Phase() Phase { return e.phase }
func (e *Engine) JudgeID() string { return e.judgeID }
func (e *Engine) Question() card.TextCard { return e.question }
func (e *Engine) SubmissionCount() int { return len(e.submissions) }

func (e *Engine) Hand(playerID string) []card.TextCard {
	return append([]card.TextCard(nil), e.hands[playerID]...)
}

func (e *Engine) RemainingAnswers() int {
	if e.answers == nil {
		return 0
	}
	return e.answers.Len()
}

// View is the per-viewer projection of the round.
type View struct {
	Phase       Phase           `json:"phase"`
	JudgeID     string          `json:"judgeId"`
	Question    card.TextCard   `json:"question"`
	Submitted   []string        `json:"submitted"`
	Submissions []Submission    `json:"submissions,omitempty"`
	RoundWinner string          `json:"roundWinner,omitempty"`
	Hand        []card.TextCard `json:"hand,omitempty"`
	DeckLeft    int             `json:"deckLeft"`
}

func (e *Engine) View(viewer string) any {
	v := View{
		Phase:       e.phase,
		JudgeID:     e.judgeID,
		Question:    e.question,
		Submitted:   append([]string(nil), e.order...),
		RoundWinner: e.roundWinner,
		DeckLeft:    e.RemainingAnswers(),
	}
	// 评委阶段才公开提交的牌，按提交顺序
	if e.phase == PhaseJudging || e.phase == PhaseResolved {
		for _, id := range e.order {
			v.Submissions = append(v.Submissions, Submission{PlayerID: id, Card: e.submissions[id]})
		}
	}
	if viewer != "" {
		v.Hand = e.Hand(viewer)
	}
	return v
}
