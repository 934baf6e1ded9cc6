package stud

import "errors"

var (
	ErrNotPlaying         = errors.New("game is not in progress")
	ErrUnknownPlayer      = errors.New("player is not seated at this table")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrCannotCheck        = errors.New("cannot check, you must call or raise")
	ErrInvalidRaiseAmount = errors.New("raise amount must be positive and fit the pot")
	ErrHandOver           = errors.New("the hand is over")
	ErrHandInProgress     = errors.New("the current hand is still in progress")
)
