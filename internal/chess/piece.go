package chess

import (
	"fmt"
	"strings"
)

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other color.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// forward is the rank direction this color's pawns advance in.
func (c Color) forward() int {
	if c == White {
		return 1
	}
	return -1
}

func (c Color) valid() bool {
	return c == White || c == Black
}

type Kind string

const (
	King   Kind = "king"
	Queen  Kind = "queen"
	Rook   Kind = "rook"
	Bishop Kind = "bishop"
	Knight Kind = "knight"
	Pawn   Kind = "pawn"
)

func (k Kind) notation() string {
	switch k {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return "P"
	}
	return "?"
}

// PieceID identifies a piece for the whole game, including after capture.
// Zero is never a valid ID.
type PieceID int

// Piece is a single chessman. The square link is maintained by Position and
// only changes when a move is applied.
type Piece struct {
	ID    PieceID
	Kind  Kind
	Owner Color
	// Label tells apart pieces of the same kind and color, e.g. "left" or "E".
	Label string

	square   Square
	onBoard  bool
	captured bool
	rule     Movement
}

func newPiece(kind Kind, owner Color, label string) (*Piece, error) {
	rule, err := ruleFor(kind, owner)
	if err != nil {
		return nil, err
	}
	if !owner.valid() {
		return nil, fmt.Errorf("%w: unknown color %q", ErrInvalidState, owner)
	}
	return &Piece{Kind: kind, Owner: owner, Label: label, rule: rule}, nil
}

// Square returns the piece's current square. ok is false once captured.
func (p *Piece) Square() (sq Square, ok bool) {
	return p.square, p.onBoard
}

// Captured reports whether the piece has been taken.
func (p *Piece) Captured() bool {
	return p.captured
}

// HasMoved reports whether a pawn has made its first move. It is always
// false for other kinds, which do not track it.
func (p *Piece) HasMoved() bool {
	if pr, ok := p.rule.(*PawnRule); ok {
		return pr.Moved
	}
	return false
}

// String is the display identity, e.g. "white left rook".
func (p *Piece) String() string {
	if p == nil {
		return "<nil piece>"
	}
	if p.Label == "" {
		return fmt.Sprintf("%s %s", p.Owner, p.Kind)
	}
	return fmt.Sprintf("%s %s %s", p.Owner, p.Label, p.Kind)
}

// Symbol is the one-letter board symbol, upper case for White.
func (p *Piece) Symbol() string {
	if p.Owner == White {
		return p.Kind.notation()
	}
	return strings.ToLower(p.Kind.notation())
}
