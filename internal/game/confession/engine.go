// Package confession implements the two-truths-and-a-lie game.
package confession

import (
	"math/rand"
	"strings"

	"DegensAgainstDecency/internal/game/dealer"
	"DegensAgainstDecency/internal/game/session"
)

const StatementCount = 3

type Phase string

const (
	PhaseStatements Phase = "statements"
	PhaseGuessing   Phase = "guessing"
	PhaseRevealed   Phase = "revealed"
	PhaseEnded      Phase = "ended"
)

type Config struct {
	Rounds       int
	CorrectBonus int
	FooledBonus  int
	Seed         int64
}

func DefaultConfig() Config {
	return Config{Rounds: 5, CorrectBonus: 10, FooledBonus: 5}
}

// Reveal is the outcome of one turn.
type Reveal struct {
	LieIndex     int      `json:"lieIndex"`
	Correct      []string `json:"correct"`
	Fooled       []string `json:"fooled"`
	SpeakerBonus int      `json:"speakerBonus"`
}

type Engine struct {
	cfg Config
	rnd *rand.Rand

	speakerIdx int
	speakerID  string
	statements []string
	guesses    map[string]int
	order      []string
	spoken     map[string]int
	phase      Phase
	reveal     *Reveal
}

func New(cfg Config) *Engine {
	return &Engine{
		cfg:     cfg,
		rnd:     dealer.NewRand(cfg.Seed),
		guesses: make(map[string]int),
		spoken:  make(map[string]int),
	}
}

func (e *Engine) Kind() session.Kind { return session.KindConfession }

func (e *Engine) MinPlayers() int { return 2 }

func (e *Engine) Init(s *session.Session) error {
	e.spoken = make(map[string]int, s.Size())
	e.beginTurn(s, 0)
	return nil
}

func (e *Engine) beginTurn(s *session.Session, idx int) {
	e.speakerIdx = idx
	e.speakerID = s.PlayerAt(idx).ID
	e.statements = nil
	e.guesses = make(map[string]int)
	e.order = nil
	e.reveal = nil
	e.phase = PhaseStatements
}

// SubmitStatements stores the speaker's statements in a shuffled display
// order so the position of the lie cannot be inferred.
func (e *Engine) SubmitStatements(s *session.Session, speakerID string, statements []string) error {
	if !s.Playing() {
		return ErrNotPlaying
	}
	if speakerID != e.speakerID {
		return ErrWrongSpeaker
	}
	if e.phase != PhaseStatements {
		return ErrStatementsSubmitted
	}
	if len(statements) != StatementCount {
		return ErrInvalidStatementCount
	}
	display := make([]string, StatementCount)
	for i, st := range statements {
		st = strings.TrimSpace(st)
		if st == "" {
			return ErrEmptyStatement
		}
		display[i] = st
	}
	e.rnd.Shuffle(len(display), func(i, j int) { display[i], display[j] = display[j], display[i] })

	e.statements = display
	e.guesses = make(map[string]int)
	e.order = nil
	e.phase = PhaseGuessing
	return nil
}

func (e *Engine) Guess(s *session.Session, playerID string, index int) error {
	if !s.Playing() {
		return ErrNotPlaying
	}
	if !s.HasPlayer(playerID) {
		return ErrUnknownPlayer
	}
	if playerID == e.speakerID {
		return ErrSpeakerCannotGuess
	}
	if _, ok := e.guesses[playerID]; ok {
		return ErrDuplicateGuess
	}
	if index < 0 || index >= StatementCount {
		return ErrInvalidIndex
	}
	switch e.phase {
	case PhaseStatements:
		return ErrNoStatements
	case PhaseRevealed:
		return ErrAlreadyRevealed
	}
	e.guesses[playerID] = index
	e.order = append(e.order, playerID)
	return nil
}

// Reveal scores the turn: every correct guesser gets CorrectBonus, the
// speaker gets FooledBonus per wrong guess.
func (e *Engine) Reveal(s *session.Session, speakerID string, lieIndex int) error {
	if !s.Playing() {
		return ErrNotPlaying
	}
	if speakerID != e.speakerID {
		return ErrWrongSpeaker
	}
	if lieIndex < 0 || lieIndex >= StatementCount {
		return ErrInvalidIndex
	}
	switch e.phase {
	case PhaseStatements:
		return ErrNoStatements
	case PhaseRevealed:
		return ErrAlreadyRevealed
	}

	r := &Reveal{LieIndex: lieIndex, Correct: []string{}, Fooled: []string{}}
	for _, id := range e.order {
		if e.guesses[id] == lieIndex {
			s.AddScore(id, e.cfg.CorrectBonus)
			r.Correct = append(r.Correct, id)
		} else {
			r.Fooled = append(r.Fooled, id)
		}
	}
	r.SpeakerBonus = e.cfg.FooledBonus * len(r.Fooled)
	s.AddScore(e.speakerID, r.SpeakerBonus)

	e.reveal = r
	e.phase = PhaseRevealed
	return nil
}

// NextTurn passes the floor to the next player in join order. It may be
// forced at any phase; the current speaker's turn is used up either way.
func (e *Engine) NextTurn(s *session.Session) error {
	if !s.Playing() {
		return ErrNotPlaying
	}
	if e.speakerID != "" {
		e.spoken[e.speakerID]++
	}
	e.advanceFrom(s, e.speakerIdx+1)
	return nil
}

// advanceFrom starts the next turn at roster position idx, wrapping into a
// new round, or ends the game once everyone has spoken enough times.
func (e *Engine) advanceFrom(s *session.Session, idx int) {
	if e.done(s) {
		e.end(s)
		return
	}
	n := s.Size()
	for step := 0; step < n; step++ {
		if idx >= n {
			idx = 0
			s.NextRound()
		}
		if e.spoken[s.PlayerAt(idx).ID] < e.cfg.Rounds {
			e.beginTurn(s, idx)
			return
		}
		idx++
	}
	e.end(s)
}

func (e *Engine) done(s *session.Session) bool {
	for _, id := range s.PlayerIDs() {
		if e.spoken[id] < e.cfg.Rounds {
			return false
		}
	}
	return true
}

func (e *Engine) end(s *session.Session) {
	e.phase = PhaseEnded
	e.speakerID = ""
	s.Finish(s.TopScorers())
}

func (e *Engine) PlayerLeft(s *session.Session, playerID string, idx int) {
	delete(e.spoken, playerID)
	if _, ok := e.guesses[playerID]; ok {
		delete(e.guesses, playerID)
		for i, id := range e.order {
			if id == playerID {
				e.order = append(e.order[:i], e.order[i+1:]...)
				break
			}
		}
	}

	if s.Size() < e.MinPlayers() {
		e.end(s)
		return
	}
	switch {
	case playerID == e.speakerID:
		// turn is void, the next seat now sits at idx
		e.speakerID = ""
		e.advanceFrom(s, idx)
	case idx < e.speakerIdx:
		e.speakerIdx--
	}
}

func (e *Engine) Phase() Phase { return e.phase }
func (e *Engine) SpeakerID() string { return e.speakerID }
func (e *Engine) Statements() []string {
	return append([]string(nil), e.statements...)
}
func (e *Engine) LastReveal() *Reveal { return e.reveal }

type View struct {
	Phase      Phase    `json:"phase"`
	SpeakerID  string   `json:"speakerId"`
	Statements []string `json:"statements,omitempty"`
	Guessed    []string `json:"guessed"`
	MyGuess    *int     `json:"myGuess,omitempty"`
	Reveal     *Reveal  `json:"reveal,omitempty"`
	// Guesses is only filled after the reveal.
	Guesses map[string]int `json:"guesses,omitempty"`
}

func (e *Engine) View(viewer string) any {
	v := View{
		Phase:      e.phase,
		SpeakerID:  e.speakerID,
		Statements: e.Statements(),
		Guessed:    append([]string(nil), e.order...),
	}
	if g, ok := e.guesses[viewer]; ok && viewer != "" {
		v.MyGuess = &g
	}
	if e.reveal != nil {
		r := *e.reveal
		v.Reveal = &r
		v.Guesses = make(map[string]int, len(e.guesses))
		for id, g := range e.guesses {
			v.Guesses[id] = g
		}
	}
	return v
}
