// Package chess is the rules core of a two-player chess game. It validates
// a requested move for a piece, applies it to the position and hands the
// turn to the other player.
//
// Check, checkmate, stalemate, castling, en passant, promotion and draw
// rules are not modeled. A game ends when a king is captured or a player
// resigns.
//
// A Game has no internal locking. Callers that share one between
// goroutines must serialize every call.
package chess

import "fmt"

// Move is the record of one applied move.
type Move struct {
	Piece    PieceID `json:"piece"`
	From     Square  `json:"from"`
	To       Square  `json:"to"`
	Captured PieceID `json:"captured,omitempty"`
}

// Game is the aggregate of the position and both players.
type Game struct {
	pos    *Position
	white  *Player
	black  *Player
	winner Color
}

// NewEmptyGame returns a game with no pieces and White to move.
func NewEmptyGame() *Game {
	g := &Game{
		pos:   newPosition(),
		white: &Player{color: White, turn: true},
		black: &Player{color: Black},
	}
	g.white.opponent = g.black
	g.black.opponent = g.white
	return g
}

// backRank runs from file A to H. Left and right are as seen by White;
// sideLabel mirrors them for Black, who faces the board from rank 8.
var backRank = [BoardSize]struct {
	kind  Kind
	label string
}{
	{Rook, "left"}, {Knight, "left"}, {Bishop, "left"}, {Queen, ""},
	{King, ""}, {Bishop, "right"}, {Knight, "right"}, {Rook, "right"},
}

// NewGame returns a game in the standard starting position.
func NewGame() *Game {
	g := NewEmptyGame()
	for _, side := range []struct {
		color     Color
		back, pwn int
	}{{White, 1, 2}, {Black, 8, 7}} {
		for i, bp := range backRank {
			g.mustPlace(bp.kind, side.color, sideLabel(side.color, bp.label), Sq(i+1, side.back))
		}
		for file := 1; file <= BoardSize; file++ {
			g.mustPlace(Pawn, side.color, string(rune('A'+file-1)), Sq(file, side.pwn))
		}
	}
	return g
}

func sideLabel(c Color, label string) string {
	if c != Black {
		return label
	}
	switch label {
	case "left":
		return "right"
	case "right":
		return "left"
	}
	return label
}

func (g *Game) mustPlace(kind Kind, owner Color, label string, sq Square) {
	if _, err := g.Place(kind, owner, label, sq); err != nil {
		panic(err)
	}
}

// Place puts a new piece on an empty square and adds it to its owner's
// roster. It is meant for setting up a position before play starts.
func (g *Game) Place(kind Kind, owner Color, label string, sq Square) (*Piece, error) {
	piece, err := newPiece(kind, owner, label)
	if err != nil {
		return nil, err
	}
	if err := g.pos.register(piece, sq); err != nil {
		return nil, err
	}
	pl := g.Player(owner)
	pl.roster = append(pl.roster, piece.ID)
	return piece, nil
}

// Position returns the board for read-only inspection.
func (g *Game) Position() *Position {
	return g.pos
}

// Player returns the player of color c, or nil for an unknown color.
func (g *Game) Player(c Color) *Player {
	switch c {
	case White:
		return g.white
	case Black:
		return g.black
	}
	return nil
}

// Piece looks up a piece by ID.
func (g *Game) Piece(id PieceID) *Piece {
	return g.pos.Piece(id)
}

// Turn returns the color to move. ok is false once the game is over.
func (g *Game) Turn() (c Color, ok bool) {
	switch {
	case g.white.turn:
		return White, true
	case g.black.turn:
		return Black, true
	}
	return "", false
}

// Over reports whether the game has ended.
func (g *Game) Over() bool {
	return g.winner != ""
}

// Winner returns the winning color once the game is over.
func (g *Game) Winner() (Color, bool) {
	return g.winner, g.winner != ""
}

// Captured returns the pieces color c has lost, in ID order.
func (g *Game) Captured(c Color) []*Piece {
	var out []*Piece
	for _, p := range g.pos.pieces {
		if p.Owner == c && p.captured {
			out = append(out, p)
		}
	}
	return out
}

// TakeTurn moves piece id to dest on behalf of player. On success the turn
// passes to the opponent, unless the move captured the opposing king, which
// ends the game.
func (g *Game) TakeTurn(player Color, id PieceID, dest Square) (Move, error) {
	if g.Over() {
		return Move{}, ErrGameOver
	}
	pl := g.Player(player)
	if pl == nil || !pl.turn {
		return Move{}, fmt.Errorf("%w: %s", ErrWrongTurn, player)
	}
	if err := g.Validate(player, id, dest); err != nil {
		return Move{}, err
	}

	mv, err := g.apply(g.pos.Piece(id), dest)
	if err != nil {
		return Move{}, err
	}

	if taken := g.pos.Piece(mv.Captured); taken != nil && taken.Kind == King {
		g.finish(player)
		return mv, nil
	}
	pl.turn = false
	pl.opponent.turn = true
	return mv, nil
}

// Resign ends the game in the opponent's favour. Either player may resign
// regardless of whose turn it is.
func (g *Game) Resign(player Color) error {
	if g.Over() {
		return ErrGameOver
	}
	pl := g.Player(player)
	if pl == nil {
		return fmt.Errorf("%w: unknown color %q", ErrInvalidState, player)
	}
	g.finish(pl.opponent.color)
	return nil
}

func (g *Game) finish(winner Color) {
	g.winner = winner
	g.white.turn = false
	g.black.turn = false
}

// Destinations lists every square piece id could move to now, ignoring
// whose turn it is. A finished game has none.
func (g *Game) Destinations(id PieceID) []Square {
	if g.Over() {
		return nil
	}
	piece := g.pos.Piece(id)
	if piece == nil || piece.captured {
		return nil
	}
	var out []Square
	for rank := 1; rank <= BoardSize; rank++ {
		for file := 1; file <= BoardSize; file++ {
			sq := Sq(file, rank)
			if g.Validate(piece.Owner, id, sq) == nil {
				out = append(out, sq)
			}
		}
	}
	return out
}
