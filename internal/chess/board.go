package chess

import (
	"fmt"
	"strings"
)

// BoardSize is the number of files and ranks.
const BoardSize = 8

// Square is one cell of the board. File and Rank both run from 1 to 8;
// file 1 is the A file and rank 1 is White's back rank.
type Square struct {
	File int `json:"file"`
	Rank int `json:"rank"`
}

// Sq is a shorthand for Square{file, rank}. It does not check bounds.
func Sq(file, rank int) Square {
	return Square{File: file, Rank: rank}
}

// ParseSquare parses the display form of a square, e.g. "E4" or "e4".
func ParseSquare(s string) (Square, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 || s[0] < 'A' || s[0] > 'H' || s[1] < '1' || s[1] > '8' {
		return Square{}, fmt.Errorf("%w: %q", ErrOutOfBounds, s)
	}
	return Square{File: int(s[0]-'A') + 1, Rank: int(s[1]-'1') + 1}, nil
}

// Valid reports whether both coordinates are on the board.
func (s Square) Valid() bool {
	return s.File >= 1 && s.File <= BoardSize && s.Rank >= 1 && s.Rank <= BoardSize
}

func (s Square) String() string {
	if !s.Valid() {
		return fmt.Sprintf("(%d,%d)", s.File, s.Rank)
	}
	return fmt.Sprintf("%c%d", 'A'+s.File-1, s.Rank)
}

// Offset returns the square displaced by (df, dr). The result may be off the board.
func (s Square) Offset(df, dr int) Square {
	return Square{File: s.File + df, Rank: s.Rank + dr}
}

// LineType is a straight line a long-range piece can travel along.
type LineType int

const (
	Vertical LineType = iota
	Horizontal
	Diagonal
)

func (l LineType) String() string {
	switch l {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	case Diagonal:
		return "diagonal"
	}
	return "unknown"
}

// lineBetween classifies the line joining two distinct squares.
func lineBetween(from, to Square) (LineType, bool) {
	df, dr := to.File-from.File, to.Rank-from.Rank
	switch {
	case df == 0 && dr == 0:
		return 0, false
	case df == 0:
		return Vertical, true
	case dr == 0:
		return Horizontal, true
	case abs(df) == abs(dr):
		return Diagonal, true
	}
	return 0, false
}

// Position is the 8x8 grid. Each cell holds the ID of its occupant, or zero.
// The piece arena lives alongside the grid so that a cell's handle and the
// piece's square can only be changed together.
type Position struct {
	cells  [BoardSize][BoardSize]PieceID
	pieces []*Piece
}

func newPosition() *Position {
	return &Position{}
}

// SquareAt returns the square at (file, rank).
func (p *Position) SquareAt(file, rank int) (Square, error) {
	sq := Square{File: file, Rank: rank}
	if !sq.Valid() {
		return Square{}, fmt.Errorf("%w: file %d rank %d", ErrOutOfBounds, file, rank)
	}
	return sq, nil
}

// Occupant returns the piece standing on sq, or nil.
func (p *Position) Occupant(sq Square) *Piece {
	if !sq.Valid() {
		return nil
	}
	return p.Piece(p.cells[sq.Rank-1][sq.File-1])
}

// Piece looks a piece up by ID, captured pieces included.
func (p *Position) Piece(id PieceID) *Piece {
	if id <= 0 || int(id) > len(p.pieces) {
		return nil
	}
	return p.pieces[id-1]
}

// Pieces returns every piece ever placed, in ID order.
func (p *Position) Pieces() []*Piece {
	out := make([]*Piece, len(p.pieces))
	copy(out, p.pieces)
	return out
}

// IsPathClear reports whether every square strictly between origin and
// destination along line is empty.
func (p *Position) IsPathClear(origin, destination Square, line LineType) (bool, error) {
	if !origin.Valid() || !destination.Valid() {
		return false, fmt.Errorf("%w: %s-%s", ErrOutOfBounds, origin, destination)
	}
	if got, ok := lineBetween(origin, destination); !ok || got != line {
		return false, fmt.Errorf("%w: %s-%s is not %s", ErrInvalidLine, origin, destination, line)
	}

	df := sign(destination.File - origin.File)
	dr := sign(destination.Rank - origin.Rank)
	for sq := origin.Offset(df, dr); sq != destination; sq = sq.Offset(df, dr) {
		if p.Occupant(sq) != nil {
			return false, nil
		}
	}
	return true, nil
}

// register adds a piece to the arena and places it on sq.
func (p *Position) register(piece *Piece, sq Square) error {
	if !sq.Valid() {
		return fmt.Errorf("%w: cannot place %s on %s", ErrOutOfBounds, piece, sq)
	}
	if other := p.Occupant(sq); other != nil {
		return fmt.Errorf("%w: %s and %s both on %s", ErrInvalidState, other, piece, sq)
	}
	piece.ID = PieceID(len(p.pieces) + 1)
	p.pieces = append(p.pieces, piece)
	p.link(piece, sq)
	return nil
}

func (p *Position) link(piece *Piece, sq Square) {
	p.cells[sq.Rank-1][sq.File-1] = piece.ID
	piece.square = sq
	piece.onBoard = true
}

func (p *Position) unlink(piece *Piece) {
	if piece.onBoard {
		p.cells[piece.square.Rank-1][piece.square.File-1] = 0
	}
	piece.square = Square{}
	piece.onBoard = false
}

// consistent checks the square/piece back-references in both directions.
func (p *Position) consistent() error {
	for r := 0; r < BoardSize; r++ {
		for f := 0; f < BoardSize; f++ {
			id := p.cells[r][f]
			if id == 0 {
				continue
			}
			sq := Square{File: f + 1, Rank: r + 1}
			piece := p.Piece(id)
			if piece == nil || !piece.onBoard || piece.square != sq {
				return fmt.Errorf("%w: %s points at piece %d which is elsewhere", ErrInvalidState, sq, id)
			}
		}
	}
	for _, piece := range p.pieces {
		if piece.captured && piece.onBoard {
			return fmt.Errorf("%w: captured %s still on %s", ErrInvalidState, piece, piece.square)
		}
		if !piece.captured && (!piece.onBoard || p.Occupant(piece.square) != piece) {
			return fmt.Errorf("%w: %s is not on its square", ErrInvalidState, piece)
		}
	}
	return nil
}

// String draws the board from White's side, for debugging.
func (p *Position) String() string {
	var b strings.Builder
	for rank := BoardSize; rank >= 1; rank-- {
		fmt.Fprintf(&b, "%d ", rank)
		for file := 1; file <= BoardSize; file++ {
			if piece := p.Occupant(Sq(file, rank)); piece != nil {
				b.WriteString(piece.Symbol())
			} else {
				b.WriteByte('.')
			}
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	b.WriteString("  A B C D E F G H\n")
	return b.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
