package model

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// Clock accumulates how long one player has spent on their turns.
type Clock struct {
	mu          sync.Mutex
	total       time.Duration
	lastStarted time.Time // When the clock was last started
	isRunning   bool
	now         func() time.Time
}

func NewClock(total time.Duration) *Clock {
	return &Clock{
		total: total,
		now:   time.Now,
	}
}

// Start begins timing the current turn. Starting a running clock is a no-op.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		c.lastStarted = c.now()
		log.Debugf("clock started at %s", c.lastStarted)
		c.isRunning = true
	}
}

// Stop ends the current turn and folds it into the total.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		c.total += c.now().Sub(c.lastStarted)
		log.Debugf("clock stopped at %s total", c.total)
		c.isRunning = false
	}
}

// Total returns all time spent, including the turn in progress.
func (c *Clock) Total() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return c.total + c.now().Sub(c.lastStarted)
	}
	return c.total
}

// Current returns the time spent on the turn in progress, or zero.
func (c *Clock) Current() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return c.now().Sub(c.lastStarted)
	}
	return 0
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isRunning
}
