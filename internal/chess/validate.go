package chess

import "fmt"

// Validate decides whether player may move piece id to dest in the current
// position. It never changes the game. Turn order is not checked here; see
// TakeTurn.
func (g *Game) Validate(player Color, id PieceID, dest Square) error {
	piece := g.pos.Piece(id)
	if piece == nil {
		return fmt.Errorf("%w: %d", ErrUnknownPiece, id)
	}
	if piece.captured {
		return reject(piece, dest, ErrPieceCaptured)
	}
	if !dest.Valid() {
		return reject(piece, dest, ErrOutOfBounds)
	}
	if piece.Owner != player {
		return reject(piece, dest, ErrNotOwnersPiece)
	}
	if target := g.pos.Occupant(dest); target != nil && target.Owner == piece.Owner {
		return reject(piece, dest, ErrFriendlyOccupied)
	}
	if err := piece.rule.check(g.pos, piece, dest); err != nil {
		return reject(piece, dest, err)
	}
	return nil
}
