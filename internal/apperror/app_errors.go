package apperror

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrAlreadyInRoom       = errors.New("player is already in the room")
	ErrNotInRoom           = errors.New("player is not in a room")
	ErrGameInProgress      = errors.New("game already started")
	ErrGameOver            = errors.New("game is over")
	ErrRoundOver           = errors.New("round is not active")
	ErrNotHost             = errors.New("only the host can do that")
	ErrInsufficientPlayers = errors.New("need at least 2 players")
	ErrNotYourTurn         = errors.New("it's not your turn")

	ErrInvalidPath       = errors.New("letters must form a connected path")
	ErrNotAWord          = errors.New("word is not in the dictionary")
	ErrWordTooShort      = errors.New("word is too short")
	ErrWordTooLong       = errors.New("word is too long")
	ErrWordAlreadyPlayed = errors.New("word already played this round")
	ErrBoardMismatch     = errors.New("path does not match the board")

	ErrInsufficientGems = errors.New("not enough gems")
	ErrUnknownAbility   = errors.New("unknown ability")
	ErrInvalidSwap      = errors.New("invalid swap target")
	ErrNoHintFound      = errors.New("no hint found")

	ErrAlreadyVoted = errors.New("player already voted")
	ErrNotVoting    = errors.New("voting is not open")

	ErrCodeSpaceExhausted = errors.New("room code space exhausted")
)
