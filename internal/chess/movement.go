package chess

import "fmt"

// Offset is a displacement (Δfile, Δrank) between two squares.
type Offset struct {
	DF int `json:"df"`
	DR int `json:"dr"`
}

func displacement(from, to Square) Offset {
	return Offset{DF: to.File - from.File, DR: to.Rank - from.Rank}
}

func containsOffset(set []Offset, o Offset) bool {
	for _, s := range set {
		if s == o {
			return true
		}
	}
	return false
}

// Movement is the kind-specific part of a piece. The set of implementations
// is closed: Steps, Slider and *PawnRule.
type Movement interface {
	// check decides shape and obstruction for a move of p to an on-board
	// square that is not friendly-occupied.
	check(pos *Position, p *Piece, to Square) error
	// moved is called after the piece's move has been applied.
	moved()
}

// Steps is a fixed displacement set for short-range pieces. Nothing between
// origin and destination is inspected, so knights jump.
type Steps []Offset

func (s Steps) check(_ *Position, p *Piece, to Square) error {
	if !containsOffset(s, displacement(p.square, to)) {
		return ErrIllegalShape
	}
	return nil
}

func (Steps) moved() {}

// Slider lists the lines a long-range piece may travel along, any distance.
type Slider []LineType

func (s Slider) check(pos *Position, p *Piece, to Square) error {
	line, ok := lineBetween(p.square, to)
	if !ok || !s.allows(line) {
		return ErrIllegalShape
	}
	clear, err := pos.IsPathClear(p.square, to, line)
	if err != nil {
		return err
	}
	if !clear {
		return ErrBlockedPath
	}
	return nil
}

func (s Slider) allows(line LineType) bool {
	for _, l := range s {
		if l == line {
			return true
		}
	}
	return false
}

func (Slider) moved() {}

// PawnRule moves differently from how it captures. Moved flips to true on
// the first applied move and never back.
type PawnRule struct {
	Advance  Offset   `json:"advance"`
	Double   Offset   `json:"double"`
	Captures []Offset `json:"captures"`
	Moved    bool     `json:"moved"`
}

func (r *PawnRule) check(pos *Position, p *Piece, to Square) error {
	d := displacement(p.square, to)
	target := pos.Occupant(to)

	switch {
	case containsOffset(r.Captures, d):
		if target == nil || target.Owner == p.Owner {
			return ErrIllegalShape
		}
		return nil
	case d == r.Advance:
		if target != nil {
			return ErrBlockedPath
		}
		return nil
	case d == r.Double && !r.Moved:
		clear, err := pos.IsPathClear(p.square, to, Vertical)
		if err != nil {
			return err
		}
		if !clear || target != nil {
			return ErrBlockedPath
		}
		return nil
	}
	return ErrIllegalShape
}

func (r *PawnRule) moved() {
	r.Moved = true
}

var (
	kingSteps = Steps{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	}
	knightSteps = Steps{
		{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
		{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
	}
)

func newPawnRule(c Color) *PawnRule {
	f := c.forward()
	return &PawnRule{
		Advance:  Offset{0, f},
		Double:   Offset{0, 2 * f},
		Captures: []Offset{{-1, f}, {1, f}},
	}
}

// ruleFor returns a new rule for one piece; no two pieces share a rule.
func ruleFor(kind Kind, owner Color) (Movement, error) {
	switch kind {
	case King:
		return append(Steps(nil), kingSteps...), nil
	case Knight:
		return append(Steps(nil), knightSteps...), nil
	case Queen:
		return Slider{Vertical, Horizontal, Diagonal}, nil
	case Rook:
		return Slider{Vertical, Horizontal}, nil
	case Bishop:
		return Slider{Diagonal}, nil
	case Pawn:
		return newPawnRule(owner), nil
	}
	return nil, fmt.Errorf("%w: unknown piece kind %q", ErrInvalidState, kind)
}
