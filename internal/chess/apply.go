package chess

import "fmt"

// apply executes a move that has already passed Validate. Errors returned
// here are always ErrInvalidState: the caller broke the precondition.
func (g *Game) apply(piece *Piece, dest Square) (Move, error) {
	if piece == nil || piece.captured || !piece.onBoard {
		return Move{}, fmt.Errorf("%w: %s is not in play", ErrInvalidState, piece)
	}
	if g.pos.Occupant(piece.square) != piece {
		return Move{}, fmt.Errorf("%w: %s has a stale square %s", ErrInvalidState, piece, piece.square)
	}
	if !dest.Valid() {
		return Move{}, fmt.Errorf("%w: destination %s", ErrInvalidState, dest)
	}

	mv := Move{Piece: piece.ID, From: piece.square, To: dest}

	if target := g.pos.Occupant(dest); target != nil {
		if target.Owner == piece.Owner {
			return Move{}, fmt.Errorf("%w: %s would capture own %s", ErrInvalidState, piece, target)
		}
		g.pos.unlink(target)
		target.captured = true
		g.Player(target.Owner).remove(target.ID)
		mv.Captured = target.ID
	}

	g.pos.unlink(piece)
	g.pos.link(piece, dest)
	piece.rule.moved()
	return mv, nil
}
