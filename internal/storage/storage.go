// Package storage persists game sessions and results in BadgerDB.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/benbeisheim/chessrules-backend/internal/chess"
	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyGamePrefix = "game/"
	keyStats      = "stats"
)

var ErrNotFound = errors.New("not found")

// Stats counts finished games.
type Stats struct {
	GamesFinished int `json:"games_finished"`
	WhiteWins     int `json:"white_wins"`
	BlackWins     int `json:"black_wins"`
	KingCaptures  int `json:"king_captures"`
	Resignations  int `json:"resignations"`
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens the database in dir, creating it if needed. An empty dir
// keeps everything in memory.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func gameKey(id string) []byte {
	return []byte(keyGamePrefix + id)
}

// SaveGame stores a session, replacing any earlier version.
func (s *Storage) SaveGame(g model.SavedGame) error {
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gameKey(g.ID), data)
	})
}

// LoadGame returns the stored session id, or ErrNotFound.
func (s *Storage) LoadGame(id string) (model.SavedGame, error) {
	var g model.SavedGame

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("game %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &g)
		})
	})

	return g, err
}

// LoadGames returns every stored session.
func (s *Storage) LoadGames() ([]model.SavedGame, error) {
	var games []model.SavedGame
	prefix := []byte(keyGamePrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var g model.SavedGame
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &g)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			games = append(games, g)
		}
		return nil
	})

	return games, err
}

// DeleteGame removes a stored session. Deleting a missing game is not an error.
func (s *Storage) DeleteGame(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(gameKey(id))
	})
}

// LoadStats loads result counters, returns empty stats if not found
func (s *Storage) LoadStats() (*Stats, error) {
	stats := &Stats{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	return stats, err
}

// RecordResult counts a finished game. Read and write happen in one
// transaction so concurrent results are not lost.
func (s *Storage) RecordResult(winner chess.Color, resolve string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		stats := &Stats{}
		item, err := txn.Get([]byte(keyStats))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, stats)
			}); err != nil {
				return err
			}
		}

		stats.GamesFinished++
		switch winner {
		case chess.White:
			stats.WhiteWins++
		case chess.Black:
			stats.BlackWins++
		}
		switch resolve {
		case model.ResolveKingCaptured:
			stats.KingCaptures++
		case model.ResolveResignation:
			stats.Resignations++
		}

		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), data)
	})
}
