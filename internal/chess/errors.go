package chess

import (
	"errors"
	"fmt"
)

// Move rejections. All of these leave the game untouched and the caller is
// free to try another move.
var (
	ErrOutOfBounds      = errors.New("square out of bounds")
	ErrWrongTurn        = errors.New("not your turn")
	ErrNotOwnersPiece   = errors.New("piece belongs to the other player")
	ErrFriendlyOccupied = errors.New("destination occupied by own piece")
	ErrIllegalShape     = errors.New("piece cannot move that way")
	ErrBlockedPath      = errors.New("path is blocked")
	ErrUnknownPiece     = errors.New("no such piece")
	ErrPieceCaptured    = errors.New("piece has been captured")
	ErrGameOver         = errors.New("game is over")
)

// Internal consistency violations. Seeing one of these means the core has a
// bug or was fed corrupt state.
var (
	ErrInvalidLine  = errors.New("squares do not share the requested line")
	ErrInvalidState = errors.New("invalid game state")
)

// MoveError carries the piece and destination of a rejected move.
type MoveError struct {
	Piece string
	To    Square
	Err   error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("%s to %s: %v", e.Piece, e.To, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

func reject(p *Piece, to Square, err error) error {
	return &MoveError{Piece: p.String(), To: to, Err: err}
}

// IsDefect reports whether err signals a broken invariant rather than a
// rejected move.
func IsDefect(err error) bool {
	return errors.Is(err, ErrInvalidLine) || errors.Is(err, ErrInvalidState)
}
