package session

import "errors"

var (
	ErrGameFull         = errors.New("game is full")
	ErrAlreadyStarted   = errors.New("game already started")
	ErrDuplicatePlayer  = errors.New("player already joined")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrNotPlaying       = errors.New("game is not in progress")
	ErrUnknownPlayer    = errors.New("player is not in this game")
	ErrFinished         = errors.New("game has finished")
	ErrInvalidCapacity  = errors.New("invalid player capacity")
	ErrInvalidPlayer    = errors.New("player id is required")
)
