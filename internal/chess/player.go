package chess

// Player is one side of the game. It owns the roster of its pieces that are
// still in play.
type Player struct {
	color    Color
	turn     bool
	roster   []PieceID
	opponent *Player
}

func (p *Player) Color() Color {
	return p.color
}

// HasTurn reports whether this player may move now.
func (p *Player) HasTurn() bool {
	return p.turn
}

func (p *Player) Opponent() *Player {
	return p.opponent
}

// Roster returns the IDs of this player's pieces still in play.
func (p *Player) Roster() []PieceID {
	out := make([]PieceID, len(p.roster))
	copy(out, p.roster)
	return out
}

func (p *Player) owns(id PieceID) bool {
	for _, r := range p.roster {
		if r == id {
			return true
		}
	}
	return false
}

func (p *Player) remove(id PieceID) bool {
	for i, r := range p.roster {
		if r == id {
			p.roster = append(p.roster[:i], p.roster[i+1:]...)
			return true
		}
	}
	return false
}
