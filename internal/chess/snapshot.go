package chess

import "fmt"

// PieceState is the serializable form of a piece.
type PieceState struct {
	ID       PieceID `json:"id"`
	Kind     Kind    `json:"kind"`
	Owner    Color   `json:"owner"`
	Label    string  `json:"label,omitempty"`
	Square   *Square `json:"square,omitempty"`
	Captured bool    `json:"captured,omitempty"`
	Moved    bool    `json:"moved,omitempty"`
}

// Snapshot is the complete serializable state of a Game.
type Snapshot struct {
	Turn   Color        `json:"turn,omitempty"`
	Winner Color        `json:"winner,omitempty"`
	Pieces []PieceState `json:"pieces"`
}

// Snapshot captures the game so it can be stored and later restored.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{Winner: g.winner, Pieces: make([]PieceState, 0, len(g.pos.pieces))}
	s.Turn, _ = g.Turn()
	for _, p := range g.pos.pieces {
		ps := PieceState{
			ID:       p.ID,
			Kind:     p.Kind,
			Owner:    p.Owner,
			Label:    p.Label,
			Captured: p.captured,
			Moved:    p.HasMoved(),
		}
		if sq, ok := p.Square(); ok {
			ps.Square = &sq
		}
		s.Pieces = append(s.Pieces, ps)
	}
	return s
}

// Restore rebuilds a game from a snapshot. Pieces must carry the IDs 1..n in
// order. Any inconsistency is reported as ErrInvalidState.
func Restore(s Snapshot) (*Game, error) {
	g := NewEmptyGame()
	for i, ps := range s.Pieces {
		if ps.ID != PieceID(i+1) {
			return nil, fmt.Errorf("%w: piece %d has ID %d", ErrInvalidState, i+1, ps.ID)
		}
		piece, err := newPiece(ps.Kind, ps.Owner, ps.Label)
		if err != nil {
			return nil, err
		}
		if pr, ok := piece.rule.(*PawnRule); ok {
			pr.Moved = ps.Moved
		}
		piece.ID = ps.ID
		g.pos.pieces = append(g.pos.pieces, piece)

		if ps.Captured {
			if ps.Square != nil {
				return nil, fmt.Errorf("%w: captured %s has a square", ErrInvalidState, piece)
			}
			piece.captured = true
			continue
		}
		if ps.Square == nil || !ps.Square.Valid() {
			return nil, fmt.Errorf("%w: %s has no valid square", ErrInvalidState, piece)
		}
		if other := g.pos.Occupant(*ps.Square); other != nil {
			return nil, fmt.Errorf("%w: %s and %s both on %s", ErrInvalidState, other, piece, *ps.Square)
		}
		g.pos.link(piece, *ps.Square)
		pl := g.Player(ps.Owner)
		pl.roster = append(pl.roster, piece.ID)
	}

	switch {
	case s.Winner != "":
		if !s.Winner.valid() {
			return nil, fmt.Errorf("%w: unknown winner %q", ErrInvalidState, s.Winner)
		}
		g.finish(s.Winner)
	case s.Turn.valid():
		g.white.turn = s.Turn == White
		g.black.turn = s.Turn == Black
	default:
		return nil, fmt.Errorf("%w: unknown turn %q", ErrInvalidState, s.Turn)
	}

	if err := g.pos.consistent(); err != nil {
		return nil, err
	}
	return g, nil
}
