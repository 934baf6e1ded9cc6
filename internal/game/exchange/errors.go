package exchange

import "errors"

var (
	ErrNotPlaying          = errors.New("game is not in progress")
	ErrUnknownPlayer       = errors.New("player is not in this game")
	ErrJudgeCannotSubmit   = errors.New("the judge cannot submit a card")
	ErrDuplicateSubmission = errors.New("you already submitted a card this round")
	ErrCardNotInHand       = errors.New("that card is not in your hand")
	ErrNotJudge            = errors.New("only the judge can pick the winner")
	ErrInvalidChoice       = errors.New("that player did not submit a card")
	ErrAlreadyJudged       = errors.New("this round has already been judged")
	ErrAwaitingSubmissions = errors.New("not every player has submitted yet")
	ErrRoundClosed         = errors.New("submissions are closed for this round")
)
