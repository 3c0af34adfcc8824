package chess

import (
	"encoding/json"
	"errors"
	"testing"
)

func play(t *testing.T, g *Game, player Color, p *Piece, to string) Move {
	t.Helper()
	mv, err := g.TakeTurn(player, p.ID, mustSquare(t, to))
	if err != nil {
		t.Fatalf("%s: %s to %s: %v", player, p, to, err)
	}
	if err := g.Position().consistent(); err != nil {
		t.Fatalf("after %s to %s: %v", p, to, err)
	}
	return mv
}

func TestTurnAlternation(t *testing.T) {
	g := NewGame()
	pos := g.Position()
	wKnight := pos.Occupant(mustSquare(t, "G1"))
	bKnight := pos.Occupant(mustSquare(t, "B8"))

	if _, err := g.TakeTurn(Black, bKnight.ID, mustSquare(t, "C6")); !errors.Is(err, ErrWrongTurn) {
		t.Fatalf("black first: err = %v, want ErrWrongTurn", err)
	}

	play(t, g, White, wKnight, "F3")
	if g.Player(White).HasTurn() || !g.Player(Black).HasTurn() {
		t.Fatal("turn did not pass to black")
	}
	if _, err := g.TakeTurn(White, wKnight.ID, mustSquare(t, "G5")); !errors.Is(err, ErrWrongTurn) {
		t.Fatalf("white twice: err = %v, want ErrWrongTurn", err)
	}

	play(t, g, Black, bKnight, "C6")
	if turn, _ := g.Turn(); turn != White {
		t.Fatalf("Turn() = %s, want white", turn)
	}
}

func TestRejectedMoveKeepsTurn(t *testing.T) {
	g := NewGame()
	rook := g.Position().Occupant(mustSquare(t, "A1"))
	bPawn := g.Position().Occupant(mustSquare(t, "A7"))

	if _, err := g.TakeTurn(White, rook.ID, mustSquare(t, "A4")); !errors.Is(err, ErrBlockedPath) {
		t.Fatalf("err = %v, want ErrBlockedPath", err)
	}
	if _, err := g.TakeTurn(White, bPawn.ID, mustSquare(t, "A6")); !errors.Is(err, ErrNotOwnersPiece) {
		t.Fatalf("err = %v, want ErrNotOwnersPiece", err)
	}
	if turn, _ := g.Turn(); turn != White {
		t.Fatalf("Turn() = %s after rejected moves, want white", turn)
	}
	if sq, _ := rook.Square(); sq.String() != "A1" {
		t.Fatalf("rook moved to %s", sq)
	}
}

func TestPawnDoubleStepOnlyOnce(t *testing.T) {
	g := NewEmptyGame()
	pawn := mustPlace(t, g, Pawn, White, "E2")
	king := mustPlace(t, g, King, Black, "A8")

	if pawn.HasMoved() {
		t.Fatal("new pawn reports moved")
	}
	play(t, g, White, pawn, "E4")
	if !pawn.HasMoved() {
		t.Fatal("pawn not flagged after first move")
	}
	play(t, g, Black, king, "B8")

	if _, err := g.TakeTurn(White, pawn.ID, mustSquare(t, "E6")); !errors.Is(err, ErrIllegalShape) {
		t.Fatalf("second double step: err = %v, want ErrIllegalShape", err)
	}
	play(t, g, White, pawn, "E5")
	if !pawn.HasMoved() {
		t.Fatal("moved flag was reset")
	}
}

func TestPawnCaptureShape(t *testing.T) {
	t.Run("captures diagonally", func(t *testing.T) {
		g := NewEmptyGame()
		pawn := mustPlace(t, g, Pawn, White, "D4")
		victim := mustPlace(t, g, Knight, Black, "E5")

		mv := play(t, g, White, pawn, "E5")
		if mv.Captured != victim.ID {
			t.Fatalf("Move.Captured = %d, want %d", mv.Captured, victim.ID)
		}
		if !victim.Captured() {
			t.Fatal("victim not flagged captured")
		}
		if _, ok := victim.Square(); ok {
			t.Fatal("captured piece still has a square")
		}
		if g.Player(Black).owns(victim.ID) {
			t.Fatal("captured piece still in black roster")
		}
		if got := g.Captured(Black); len(got) != 1 || got[0] != victim {
			t.Fatalf("Captured(black) = %v", got)
		}
		if g.Position().Occupant(mustSquare(t, "E5")) != pawn {
			t.Fatal("E5 does not hold the pawn")
		}
		if g.Position().Occupant(mustSquare(t, "D4")) != nil {
			t.Fatal("D4 not vacated")
		}
	})

	t.Run("no diagonal onto empty square", func(t *testing.T) {
		g := NewEmptyGame()
		pawn := mustPlace(t, g, Pawn, White, "D4")
		if _, err := g.TakeTurn(White, pawn.ID, mustSquare(t, "E5")); !errors.Is(err, ErrIllegalShape) {
			t.Fatalf("err = %v, want ErrIllegalShape", err)
		}
	})

	t.Run("no straight capture", func(t *testing.T) {
		g := NewEmptyGame()
		pawn := mustPlace(t, g, Pawn, White, "D4")
		mustPlace(t, g, Knight, Black, "D5")
		if _, err := g.TakeTurn(White, pawn.ID, mustSquare(t, "D5")); !errors.Is(err, ErrBlockedPath) {
			t.Fatalf("err = %v, want ErrBlockedPath", err)
		}
	})
}

func TestCapturedPieceIsOutOfPlay(t *testing.T) {
	g := NewEmptyGame()
	rook := mustPlace(t, g, Rook, White, "A1")
	knight := mustPlace(t, g, Knight, Black, "A8")
	mustPlace(t, g, King, Black, "H8")

	play(t, g, White, rook, "A8")
	if _, err := g.TakeTurn(Black, knight.ID, mustSquare(t, "B6")); !errors.Is(err, ErrPieceCaptured) {
		t.Fatalf("moving captured knight: err = %v, want ErrPieceCaptured", err)
	}
	if got := g.Destinations(knight.ID); got != nil {
		t.Fatalf("Destinations(captured) = %v", got)
	}
	if _, err := g.apply(knight, mustSquare(t, "B6")); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("apply(captured) err = %v, want ErrInvalidState", err)
	}
}

func TestApplyPreconditions(t *testing.T) {
	g := NewEmptyGame()
	rook := mustPlace(t, g, Rook, White, "A1")
	mustPlace(t, g, Pawn, White, "A2")

	if _, err := g.apply(rook, mustSquare(t, "A2")); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("apply onto own piece: err = %v, want ErrInvalidState", err)
	}
	if _, err := g.apply(rook, Sq(1, 0)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("apply off board: err = %v, want ErrInvalidState", err)
	}
	if _, err := g.apply(nil, mustSquare(t, "A2")); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("apply(nil): err = %v, want ErrInvalidState", err)
	}
	if err := g.Position().consistent(); err != nil {
		t.Fatal(err)
	}
}

func TestKingCaptureEndsGame(t *testing.T) {
	g := NewEmptyGame()
	queen := mustPlace(t, g, Queen, White, "D1")
	mustPlace(t, g, King, White, "E1")
	bKing := mustPlace(t, g, King, Black, "D8")

	play(t, g, White, queen, "D8")
	if !g.Over() {
		t.Fatal("game not over after king capture")
	}
	if w, ok := g.Winner(); !ok || w != White {
		t.Fatalf("Winner() = %v, %v", w, ok)
	}
	if _, ok := g.Turn(); ok {
		t.Fatal("a player still holds the turn")
	}
	if !bKing.Captured() {
		t.Fatal("king not captured")
	}
	if _, err := g.TakeTurn(Black, bKing.ID, mustSquare(t, "C8")); !errors.Is(err, ErrGameOver) {
		t.Fatalf("err = %v, want ErrGameOver", err)
	}
}

func TestResign(t *testing.T) {
	g := NewGame()
	if err := g.Resign(Black); err != nil {
		t.Fatal(err)
	}
	if w, _ := g.Winner(); w != White {
		t.Fatalf("Winner() = %s, want white", w)
	}
	if g.Player(White).HasTurn() || g.Player(Black).HasTurn() {
		t.Fatal("turn flag set after resignation")
	}
	if err := g.Resign(White); !errors.Is(err, ErrGameOver) {
		t.Fatalf("second resign: err = %v, want ErrGameOver", err)
	}
}

func TestSnapshotRestore(t *testing.T) {
	g := NewGame()
	pos := g.Position()
	ePawn := pos.Occupant(mustSquare(t, "E2"))
	dPawn := pos.Occupant(mustSquare(t, "D7"))
	play(t, g, White, ePawn, "E4")
	play(t, g, Black, dPawn, "D5")
	play(t, g, White, ePawn, "D5")

	data, err := json.Marshal(g.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatal(err)
	}
	r, err := Restore(snap)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if turn, _ := r.Turn(); turn != Black {
		t.Fatalf("restored turn = %s, want black", turn)
	}
	moved := r.Piece(ePawn.ID)
	if sq, _ := moved.Square(); sq.String() != "D5" || !moved.HasMoved() {
		t.Fatalf("restored pawn at %s moved=%v", sq, moved.HasMoved())
	}
	if !r.Piece(dPawn.ID).Captured() {
		t.Fatal("captured pawn restored into play")
	}
	if n := len(r.Player(Black).Roster()); n != 15 {
		t.Fatalf("black roster = %d, want 15", n)
	}
	if r.Position().String() != g.Position().String() {
		t.Fatalf("boards differ:\n%s\n%s", r.Position(), g.Position())
	}
}

func TestRestoreRejectsCorruptSnapshot(t *testing.T) {
	e4 := Sq(5, 4)
	tests := []struct {
		name string
		snap Snapshot
	}{
		{"two on one square", Snapshot{Turn: White, Pieces: []PieceState{
			{ID: 1, Kind: King, Owner: White, Square: &e4},
			{ID: 2, Kind: King, Owner: Black, Square: &e4},
		}}},
		{"captured with square", Snapshot{Turn: White, Pieces: []PieceState{
			{ID: 1, Kind: Rook, Owner: White, Square: &e4, Captured: true},
		}}},
		{"in play without square", Snapshot{Turn: White, Pieces: []PieceState{
			{ID: 1, Kind: Rook, Owner: White},
		}}},
		{"gap in IDs", Snapshot{Turn: White, Pieces: []PieceState{
			{ID: 2, Kind: Rook, Owner: White, Square: &e4},
		}}},
		{"no turn", Snapshot{Pieces: []PieceState{}}},
		{"bad kind", Snapshot{Turn: White, Pieces: []PieceState{
			{ID: 1, Kind: "wizard", Owner: White, Square: &e4},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Restore(tt.snap); !errors.Is(err, ErrInvalidState) {
				t.Fatalf("Restore err = %v, want ErrInvalidState", err)
			}
		})
	}
}

func TestPiecesDoNotShareRules(t *testing.T) {
	g := NewGame()
	pos := g.Position()
	for _, pair := range [][2]Square{{Sq(5, 1), Sq(5, 8)}, {Sq(2, 1), Sq(7, 1)}} {
		a, b := pos.Occupant(pair[0]), pos.Occupant(pair[1])
		a.rule.(Steps)[0] = Offset{7, 7}
		if b.rule.(Steps)[0] == (Offset{7, 7}) {
			t.Errorf("%s and %s share one rule", a, b)
		}
	}
	if kingSteps[0] == (Offset{7, 7}) || knightSteps[0] == (Offset{7, 7}) {
		t.Error("package rule tables were modified")
	}
}
