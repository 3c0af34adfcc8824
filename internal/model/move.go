package model

import "github.com/benbeisheim/chessrules-backend/internal/chess"

// WSMove is a move request: which piece, and the square it should go to
// in display form ("E4").
type WSMove struct {
	Piece chess.PieceID `json:"piece"`
	To    string        `json:"to"`
}

// MoveView describes the last applied move.
type MoveView struct {
	Piece    *PieceView `json:"piece"`
	From     string     `json:"from"`
	To       string     `json:"to"`
	Captured *PieceView `json:"capturedPiece"`
}

func newMoveView(g *chess.Game, mv chess.Move) *MoveView {
	return &MoveView{
		Piece:    newPieceView(g.Piece(mv.Piece)),
		From:     mv.From.String(),
		To:       mv.To.String(),
		Captured: newPieceView(g.Piece(mv.Captured)),
	}
}

// MatchFoundEvent is sent to a queued player once they have been paired.
type MatchFoundEvent struct {
	GameID string      `json:"gameId"`
	Color  chess.Color `json:"color"`
}
