// internal/game/errors.go
package game

import "errors"

// Engine errors. Operations wrap these with context; match them with errors.Is.
// Every one of them is a rejected precondition and leaves the session untouched.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidState        = errors.New("invalid state")
	ErrForbidden           = errors.New("forbidden")
	ErrFull                = errors.New("session is full")
	ErrInsufficientPlayers = errors.New("not enough players")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrIllegalMove         = errors.New("illegal move")
	ErrCannotPass          = errors.New("cannot pass")
)
