package chess

import (
	"errors"
	"testing"
)

func mustSquare(t *testing.T, s string) Square {
	t.Helper()
	sq, err := ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", s, err)
	}
	return sq
}

func mustPlace(t *testing.T, g *Game, kind Kind, owner Color, at string) *Piece {
	t.Helper()
	p, err := g.Place(kind, owner, "", mustSquare(t, at))
	if err != nil {
		t.Fatalf("Place(%s %s at %s): %v", owner, kind, at, err)
	}
	return p
}

func TestSquareNotation(t *testing.T) {
	tests := []struct {
		in   string
		want Square
	}{
		{"A1", Sq(1, 1)},
		{"e4", Sq(5, 4)},
		{"H8", Sq(8, 8)},
		{" c7 ", Sq(3, 7)},
	}
	for _, tt := range tests {
		got, err := ParseSquare(tt.in)
		if err != nil {
			t.Fatalf("ParseSquare(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseSquare(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if got := Sq(5, 4).String(); got != "E4" {
		t.Errorf("String() = %q, want E4", got)
	}

	for _, bad := range []string{"", "I1", "A9", "A0", "E44", "4E"} {
		if _, err := ParseSquare(bad); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("ParseSquare(%q) err = %v, want ErrOutOfBounds", bad, err)
		}
	}
}

func TestSquareAt(t *testing.T) {
	pos := newPosition()
	if sq, err := pos.SquareAt(8, 1); err != nil || sq.String() != "H1" {
		t.Fatalf("SquareAt(8,1) = %v, %v", sq, err)
	}
	for _, c := range [][2]int{{0, 1}, {1, 0}, {9, 4}, {4, 9}, {-1, -1}} {
		if _, err := pos.SquareAt(c[0], c[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("SquareAt(%d,%d) err = %v, want ErrOutOfBounds", c[0], c[1], err)
		}
	}
}

func TestIsPathClear(t *testing.T) {
	g := NewEmptyGame()
	mustPlace(t, g, Pawn, White, "A3")
	mustPlace(t, g, Pawn, Black, "C3")
	mustPlace(t, g, Pawn, Black, "D4")
	pos := g.Position()

	tests := []struct {
		name     string
		from, to string
		line     LineType
		want     bool
	}{
		{"vertical blocked", "A1", "A5", Vertical, false},
		{"vertical adjacent", "A1", "A2", Vertical, true},
		{"vertical onto occupant", "A1", "A3", Vertical, true},
		{"horizontal blocked", "A3", "E3", Horizontal, false},
		{"horizontal clear", "A3", "C3", Horizontal, true},
		{"diagonal blocked", "B2", "E5", Diagonal, false},
		{"diagonal backwards blocked", "F6", "B2", Diagonal, false},
		{"diagonal clear", "A1", "C3", Diagonal, true},
		{"anti-diagonal clear", "H1", "A8", Diagonal, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pos.IsPathClear(mustSquare(t, tt.from), mustSquare(t, tt.to), tt.line)
			if err != nil {
				t.Fatalf("IsPathClear: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsPathClear(%s, %s, %s) = %v, want %v", tt.from, tt.to, tt.line, got, tt.want)
			}
		})
	}

	t.Run("wrong line", func(t *testing.T) {
		for _, c := range []struct {
			from, to string
			line     LineType
		}{
			{"A1", "B3", Diagonal},
			{"A1", "A4", Horizontal},
			{"A1", "D1", Vertical},
			{"A1", "C3", Vertical},
			{"E4", "E4", Vertical},
		} {
			_, err := pos.IsPathClear(mustSquare(t, c.from), mustSquare(t, c.to), c.line)
			if !errors.Is(err, ErrInvalidLine) {
				t.Errorf("IsPathClear(%s, %s, %s) err = %v, want ErrInvalidLine", c.from, c.to, c.line, err)
			}
			if !IsDefect(err) {
				t.Errorf("IsDefect(%v) = false", err)
			}
		}
	})
}

func TestPlaceRejectsOccupiedSquare(t *testing.T) {
	g := NewEmptyGame()
	mustPlace(t, g, Rook, White, "D4")
	if _, err := g.Place(Knight, Black, "", Sq(4, 4)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Place on occupied square err = %v, want ErrInvalidState", err)
	}
	if _, err := g.Place(Knight, Black, "", Sq(0, 4)); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("Place off board err = %v, want ErrOutOfBounds", err)
	}
	if _, err := g.Place(Kind("dragon"), Black, "", Sq(1, 4)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Place unknown kind err = %v, want ErrInvalidState", err)
	}
	if n := len(g.Position().Pieces()); n != 1 {
		t.Fatalf("rejected placements left %d pieces, want 1", n)
	}
}

func TestStartingPosition(t *testing.T) {
	g := NewGame()
	pos := g.Position()

	if n := len(pos.Pieces()); n != 32 {
		t.Fatalf("got %d pieces, want 32", n)
	}
	for _, c := range []Color{White, Black} {
		if n := len(g.Player(c).Roster()); n != 16 {
			t.Errorf("%s roster has %d pieces, want 16", c, n)
		}
	}
	if turn, ok := g.Turn(); !ok || turn != White {
		t.Fatalf("Turn() = %v, %v, want white", turn, ok)
	}

	names := map[string]string{
		"A1": "white left rook",
		"B1": "white left knight",
		"F1": "white right bishop",
		"D1": "white queen",
		"E1": "white king",
		"H8": "black left rook",
		"A8": "black right rook",
		"C8": "black right bishop",
		"E7": "black E pawn",
		"A2": "white A pawn",
	}
	for at, want := range names {
		p := pos.Occupant(mustSquare(t, at))
		if p == nil {
			t.Errorf("%s is empty", at)
			continue
		}
		if p.String() != want {
			t.Errorf("%s holds %q, want %q", at, p.String(), want)
		}
	}
	if err := pos.consistent(); err != nil {
		t.Fatal(err)
	}
	t.Log("\n" + pos.String())
}
