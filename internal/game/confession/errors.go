package confession

import "errors"

var (
	ErrNotPlaying            = errors.New("game is not in progress")
	ErrUnknownPlayer         = errors.New("player is not in this game")
	ErrWrongSpeaker          = errors.New("it is not your turn to speak")
	ErrInvalidStatementCount = errors.New("exactly three statements are required")
	ErrEmptyStatement        = errors.New("statements cannot be blank")
	ErrStatementsSubmitted   = errors.New("statements were already submitted this turn")
	ErrNoStatements          = errors.New("the speaker has not submitted statements yet")
	ErrSpeakerCannotGuess    = errors.New("the speaker cannot guess")
	ErrDuplicateGuess        = errors.New("you already guessed this turn")
	ErrInvalidIndex          = errors.New("statement index must be 0, 1 or 2")
	ErrAlreadyRevealed       = errors.New("the lie was already revealed")
)
