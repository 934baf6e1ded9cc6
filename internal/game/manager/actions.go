package manager

import (
	"errors"
	"fmt"

	"DegensAgainstDecency/internal/game/confession"
	"DegensAgainstDecency/internal/game/exchange"
	"DegensAgainstDecency/internal/game/session"
	"DegensAgainstDecency/internal/game/stud"

	"github.com/go-viper/mapstructure/v2"
)

// Action types accepted from players.
const (
	ActionJoin  = "join"
	ActionLeave = "leave"
	ActionStart = "start"

	// card exchange
	ActionSubmit  = "submit"
	ActionJudge   = "judge"
	ActionAdvance = "advance"

	// confession
	ActionStatements = "statements"
	ActionGuess      = "guess"
	ActionReveal     = "reveal"
	ActionNextTurn   = "next_turn"

	// stud
	ActionFold     = "fold"
	ActionCall     = "call"
	ActionCheck    = "check"
	ActionRaise    = "raise"
	ActionNextHand = "next_hand"
	ActionShowdown = "showdown"

	// actionTimeout is only ever enqueued by the turn timer.
	actionTimeout = "timeout"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrBadPayload    = errors.New("malformed action payload")
	ErrNotAllowed    = errors.New("action not allowed right now")
	ErrNotCreator    = errors.New("only the creator can start the game")
)

type Action struct {
	PlayerID string
	Type     string
	Payload  any

	turn  uint64
	reply chan error
}

type joinPayload struct {
	Name   string `json:"name"`
	Handle string `json:"handle"`
}

type submitPayload struct {
	CardID string `json:"cardId"`
}

type judgePayload struct {
	PlayerID string `json:"playerId"`
}

type statementsPayload struct {
	Statements []string `json:"statements"`
}

type guessPayload struct {
	Index int `json:"index"`
}

type revealPayload struct {
	LieIndex int `json:"lieIndex"`
}

type raisePayload struct {
	Amount int `json:"amount"`
}

// frame is the websocket "action" event body.
type frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// decode maps a loosely typed JSON payload onto out. Numbers arriving as
// strings or floats are accepted.
func decode(in, out any) error {
	if in == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

// play routes a game action to the engine variant behind s.
func play(s *session.Session, a Action) error {
	switch eng := s.Engine().(type) {
	case *exchange.Engine:
		return playExchange(s, eng, a)
	case *confession.Engine:
		return playConfession(s, eng, a)
	case *stud.Engine:
		return playStud(s, eng, a)
	}
	return ErrUnknownAction
}

func playExchange(s *session.Session, eng *exchange.Engine, a Action) error {
	switch a.Type {
	case ActionSubmit:
		var p submitPayload
		if err := decode(a.Payload, &p); err != nil {
			return err
		}
		return eng.Submit(s, a.PlayerID, p.CardID)
	case ActionJudge:
		var p judgePayload
		if err := decode(a.Payload, &p); err != nil {
			return err
		}
		return eng.Judge(s, a.PlayerID, p.PlayerID)
	case ActionAdvance:
		// 只有裁判在结算后可以手动进入下一轮
		if a.PlayerID != eng.JudgeID() || eng.Phase() != exchange.PhaseResolved {
			return ErrNotAllowed
		}
		return eng.AdvanceRound(s)
	case actionTimeout:
		return eng.AdvanceRound(s)
	}
	return ErrUnknownAction
}

func playConfession(s *session.Session, eng *confession.Engine, a Action) error {
	switch a.Type {
	case ActionStatements:
		var p statementsPayload
		if err := decode(a.Payload, &p); err != nil {
			return err
		}
		return eng.SubmitStatements(s, a.PlayerID, p.Statements)
	case ActionGuess:
		var p guessPayload
		if err := decode(a.Payload, &p); err != nil {
			return err
		}
		return eng.Guess(s, a.PlayerID, p.Index)
	case ActionReveal:
		var p revealPayload
		if err := decode(a.Payload, &p); err != nil {
			return err
		}
		return eng.Reveal(s, a.PlayerID, p.LieIndex)
	case ActionNextTurn:
		if a.PlayerID != eng.SpeakerID() || eng.Phase() != confession.PhaseRevealed {
			return ErrNotAllowed
		}
		return eng.NextTurn(s)
	case actionTimeout:
		return eng.NextTurn(s)
	}
	return ErrUnknownAction
}

func playStud(s *session.Session, eng *stud.Engine, a Action) error {
	switch a.Type {
	case ActionFold:
		return eng.Fold(s, a.PlayerID)
	case ActionCall:
		return eng.Call(s, a.PlayerID)
	case ActionCheck:
		return eng.Check(s, a.PlayerID)
	case ActionRaise:
		var p raisePayload
		if err := decode(a.Payload, &p); err != nil {
			return err
		}
		return eng.Raise(s, a.PlayerID, p.Amount)
	case ActionNextHand:
		if !s.HasPlayer(a.PlayerID) {
			return session.ErrUnknownPlayer
		}
		return eng.NextHand(s)
	case ActionShowdown:
		if a.PlayerID != s.CreatorID() {
			return ErrNotAllowed
		}
		return eng.ForceShowdown(s)
	case actionTimeout:
		if eng.HandOver() {
			return eng.NextHand(s)
		}
		cur := eng.CurrentPlayer()
		if eng.CanCheck() {
			return eng.Check(s, cur)
		}
		return eng.Fold(s, cur)
	}
	return ErrUnknownAction
}
