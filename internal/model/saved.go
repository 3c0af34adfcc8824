package model

import (
	"fmt"
	"time"

	"github.com/benbeisheim/chessrules-backend/internal/chess"
)

// SavedGame is everything needed to bring a session back after a restart.
// Connections are not kept; clients reconnect.
type SavedGame struct {
	ID        string                        `json:"id"`
	Version   uint64                        `json:"version"`
	Seats     map[chess.Color]string        `json:"seats"`
	PlayTime  map[chess.Color]time.Duration `json:"playTime"`
	Snapshot  chess.Snapshot                `json:"snapshot"`
	Resolve   string                        `json:"resolve,omitempty"`
	UpdatedAt time.Time                     `json:"updatedAt"`
}

func (g *Game) Save() SavedGame {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := SavedGame{
		ID:        g.ID,
		Version:   g.version,
		Seats:     make(map[chess.Color]string, len(g.seats)),
		PlayTime:  make(map[chess.Color]time.Duration, len(g.clocks)),
		Snapshot:  g.chess.Snapshot(),
		Resolve:   g.resolve,
		UpdatedAt: g.updatedAt,
	}
	for c, id := range g.seats {
		s.Seats[c] = id
	}
	for c, clock := range g.clocks {
		s.PlayTime[c] = clock.Total()
	}
	return s
}

// Persist hands the latest state of the game to save. Calls for one game
// run one at a time, and a version that was already saved is skipped, so
// stored versions only move forward.
func (g *Game) Persist(save func(SavedGame) error) error {
	g.saveMu.Lock()
	defer g.saveMu.Unlock()

	s := g.Save()
	if s.Version <= g.savedVersion {
		return nil
	}
	if err := save(s); err != nil {
		return err
	}
	g.savedVersion = s.Version
	return nil
}

// LoadGame rebuilds a session. The clock of the player to move restarts
// from the moment of loading.
func LoadGame(s SavedGame) (*Game, error) {
	cg, err := chess.Restore(s.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("restore game %s: %w", s.ID, err)
	}
	g := newGame(s.ID, cg)
	for c, id := range s.Seats {
		if c != chess.White && c != chess.Black {
			return nil, fmt.Errorf("restore game %s: %w: seat %q", s.ID, chess.ErrInvalidState, c)
		}
		g.seats[c] = id
	}
	for c, d := range s.PlayTime {
		if clock, ok := g.clocks[c]; ok {
			clock.total = d
		}
	}
	g.resolve = s.Resolve
	if s.Version > 0 {
		g.version = s.Version
		g.savedVersion = s.Version
	}
	if !s.UpdatedAt.IsZero() {
		g.updatedAt = s.UpdatedAt
	}
	if g.started() {
		g.startTurnClock()
	}
	return g, nil
}
