package model

import (
	"errors"
	"testing"
)

func TestQueue(t *testing.T) {
	q := NewQueue()
	for _, id := range []string{"a", "b", "c"} {
		if err := q.AddPlayer(Player{ID: id}); err != nil {
			t.Fatalf("AddPlayer(%s): %v", id, err)
		}
	}
	if err := q.AddPlayer(Player{ID: "b"}); !errors.Is(err, ErrAlreadyQueued) {
		t.Fatalf("duplicate: err = %v, want ErrAlreadyQueued", err)
	}

	p1, p2, ok := q.NextPair()
	if !ok || p1.ID != "a" || p2.ID != "b" {
		t.Fatalf("NextPair() = %s, %s, %v", p1.ID, p2.ID, ok)
	}
	if _, _, ok := q.NextPair(); ok {
		t.Fatal("NextPair() succeeded with one player queued")
	}
	if !q.Remove("c") || q.Remove("c") {
		t.Fatal("Remove should succeed exactly once")
	}
	if q.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", q.Size())
	}
}
