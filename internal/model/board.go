package model

import "github.com/benbeisheim/chessrules-backend/internal/chess"

// PieceView is how a piece is shown to clients.
type PieceView struct {
	ID       chess.PieceID `json:"id"`
	Type     chess.Kind    `json:"type"`
	Color    chess.Color   `json:"color"`
	Name     string        `json:"name"`
	Square   string        `json:"square,omitempty"`
	HasMoved bool          `json:"hasMoved"`
}

func newPieceView(p *chess.Piece) *PieceView {
	if p == nil {
		return nil
	}
	v := &PieceView{
		ID:       p.ID,
		Type:     p.Kind,
		Color:    p.Owner,
		Name:     p.String(),
		HasMoved: p.HasMoved(),
	}
	if sq, ok := p.Square(); ok {
		v.Square = sq.String()
	}
	return v
}

// BoardState is the board as rows from rank 8 down to rank 1, files A to H,
// matching how a client draws it with White at the bottom.
type BoardState struct {
	Board [][]*PieceView `json:"board"`
}

func newBoardState(pos *chess.Position) *BoardState {
	board := &BoardState{}
	for rank := chess.BoardSize; rank >= 1; rank-- {
		row := make([]*PieceView, chess.BoardSize)
		for file := 1; file <= chess.BoardSize; file++ {
			row[file-1] = newPieceView(pos.Occupant(chess.Sq(file, rank)))
		}
		board.Board = append(board.Board, row)
	}
	return board
}

type CapturedPieces struct {
	White []*PieceView `json:"white"`
	Black []*PieceView `json:"black"`
}

func newCapturedPieces(g *chess.Game) CapturedPieces {
	cp := CapturedPieces{
		White: make([]*PieceView, 0),
		Black: make([]*PieceView, 0),
	}
	for _, p := range g.Captured(chess.White) {
		cp.White = append(cp.White, newPieceView(p))
	}
	for _, p := range g.Captured(chess.Black) {
		cp.Black = append(cp.Black, newPieceView(p))
	}
	return cp
}
