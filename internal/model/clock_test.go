package model

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewClock(time.Second)
	c.now = func() time.Time { return now }

	c.Stop() // not running: no effect
	if got := c.Total(); got != time.Second {
		t.Fatalf("Total() = %s, want 1s", got)
	}

	c.Start()
	now = now.Add(4 * time.Second)
	if got := c.Current(); got != 4*time.Second {
		t.Errorf("Current() = %s, want 4s", got)
	}
	if got := c.Total(); got != 5*time.Second {
		t.Errorf("Total() while running = %s, want 5s", got)
	}

	c.Start() // already running: keeps the original start
	now = now.Add(time.Second)
	c.Stop()
	if got := c.Total(); got != 6*time.Second {
		t.Errorf("Total() after stop = %s, want 6s", got)
	}
	if got := c.Current(); got != 0 {
		t.Errorf("Current() after stop = %s, want 0", got)
	}
	if c.Running() {
		t.Error("Running() = true after Stop")
	}
}
