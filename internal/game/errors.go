package game

import "errors"

// Errors returned by the engine. They are wrapped with context, so match with
// errors.Is.
var (
	ErrNotYourTurn       = errors.New("not your turn")
	ErrHandIsOver        = errors.New("hand is over")
	ErrInvalidAction     = errors.New("invalid action")
	ErrInsufficientChips = errors.New("insufficient chips")
	ErrNotEnoughPlayers  = errors.New("not enough players")
	ErrGameFull          = errors.New("game is full")
	ErrTooManyHoleCards  = errors.New("too many hole cards")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrDuplicatePlayer   = errors.New("player already at table")
	ErrDeckExhausted     = errors.New("deck exhausted")
)
