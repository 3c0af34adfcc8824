// service/game_manager.go
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chessrules-backend/internal/chess"
	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/storage"
	"github.com/benbeisheim/chessrules-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// Store is where the manager keeps sessions across restarts. LoadGame
// returns an error wrapping storage.ErrNotFound for unknown games.
type Store interface {
	SaveGame(g model.SavedGame) error
	LoadGame(id string) (model.SavedGame, error)
	LoadGames() ([]model.SavedGame, error)
	DeleteGame(id string) error
	RecordResult(winner chess.Color, resolve string) error
	LoadStats() (*storage.Stats, error)
}

// Retention decides when games leave the manager.
type Retention struct {
	// Finished games are deleted, from memory and storage, this long
	// after they end.
	Finished time.Duration
	// Idle unfinished games with nobody connected are dropped from memory
	// after this long. They stay stored and are loaded again on access.
	Idle time.Duration
}

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	store            Store
	mu               sync.RWMutex
	done             chan struct{}
	closeOnce        sync.Once
}

// NewGameManager loads the stored games and starts pairing queued players
// every interval. store may be nil, in which case nothing is persisted.
func NewGameManager(store Store, interval time.Duration) (*GameManager, error) {
	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		store:            store,
		done:             make(chan struct{}),
	}

	if store != nil {
		saved, err := store.LoadGames()
		if err != nil {
			return nil, fmt.Errorf("load games: %w", err)
		}
		for _, s := range saved {
			game, err := model.LoadGame(s)
			if err != nil {
				log.Errorf("skipping stored game %s: %v", s.ID, err)
				continue
			}
			gm.games[game.ID] = game
		}
		log.Infof("restored %d games", len(gm.games))
	}

	// Start matchmaking processor
	go gm.processMatchmaking(interval)

	return gm, nil
}

// Close stops the matchmaking loop.
func (gm *GameManager) Close() {
	gm.closeOnce.Do(func() { close(gm.done) })
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	log.Debugf("registering matchmaking channel for player %s", playerID)

	if existingCh, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existingCh)
	}

	gm.matchingChannels[playerID] = ch
	return nil
}

func (gm *GameManager) UnregisterMatchmakingChannel(playerID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	log.Debugf("unregistering matchmaking channel for player %s", playerID)

	// The creator of the channel is responsible for closing it.
	delete(gm.matchingChannels, playerID)
	gm.queue.Remove(playerID)
}

func (gm *GameManager) processMatchmaking(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-gm.done:
			return
		case <-ticker.C:
			for gm.matchNext() {
			}
		}
	}
}

// matchNext pairs the two longest-waiting players into a new game.
func (gm *GameManager) matchNext() bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	player1, player2, ok := gm.queue.NextPair()
	if !ok {
		return false
	}

	gameID := uuid.New().String()
	game := model.NewGame(gameID)
	p1Color, err := game.AddPlayer(player1.ID)
	if err != nil {
		log.Errorf("matchmaking: adding %s: %v", player1.ID, err)
		return true
	}
	p2Color, err := game.AddPlayer(player2.ID)
	if err != nil {
		log.Errorf("matchmaking: adding %s: %v", player2.ID, err)
		return true
	}
	gm.games[gameID] = game
	gm.persist(game)
	log.Infof("matchmaking: %s (%s) vs %s (%s) in game %s", player1.ID, p1Color, player2.ID, p2Color, gameID)

	gm.notifyMatch(player1.ID, model.MatchFoundEvent{GameID: gameID, Color: p1Color})
	gm.notifyMatch(player2.ID, model.MatchFoundEvent{GameID: gameID, Color: p2Color})
	return true
}

func (gm *GameManager) notifyMatch(playerID string, event model.MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		log.Warnf("matchmaking: no channel for %s", playerID)
		return
	}
	select {
	case ch <- mustJSON(ws.MessageTypeMatchFound, event):
		delete(gm.matchingChannels, playerID)
		close(ch)
	default:
		log.Warnf("matchmaking: failed to notify %s", playerID)
	}
}

func mustJSON(t ws.MessageType, v interface{}) string {
	msg, err := ws.NewMessage(t, v)
	if err != nil {
		panic(err)
	}
	bytes, err := json.Marshal(msg)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return ErrGameExists
	}

	game := model.NewGame(gameID)
	gm.games[gameID] = game
	gm.persist(game)
	return nil
}

// GetGame returns the game, loading it from the store if it was evicted
// while idle.
func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	game, exists := gm.games[gameID]
	gm.mu.RUnlock()
	if exists {
		return game, nil
	}
	if gm.store == nil {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	if game, exists := gm.games[gameID]; exists {
		return game, nil
	}
	saved, err := gm.store.LoadGame(gameID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	if err != nil {
		return nil, err
	}
	game, err = model.LoadGame(saved)
	if err != nil {
		return nil, err
	}
	log.Debugf("game %s loaded from storage", gameID)
	gm.games[gameID] = game
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (chess.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	color, err := game.AddPlayer(playerID)
	if err != nil {
		return "", err
	}
	gm.persist(game)
	return color, nil
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	if err := gm.queue.AddPlayer(model.Player{ID: playerID}); err != nil {
		return err
	}
	log.Debugf("matchmaking: %s queued, %d waiting", playerID, gm.queue.Size())
	return nil
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) MakeMove(gameID string, playerID string, move model.WSMove) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}

	state, err := game.MakeMove(playerID, move)
	if err != nil {
		return model.GameState{}, err
	}
	gm.persist(game)
	gm.recordIfOver(state)
	return state, nil
}

func (gm *GameManager) Resign(gameID string, playerID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}

	state, err := game.Resign(playerID)
	if err != nil {
		return model.GameState{}, err
	}
	gm.persist(game)
	gm.recordIfOver(state)
	return state, nil
}

func (gm *GameManager) Destinations(gameID string, pieceID chess.PieceID) ([]string, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.Destinations(pieceID)
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, out *model.Outbox) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, out)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, out *model.Outbox) {
	gm.mu.RLock()
	game, exists := gm.games[gameID]
	gm.mu.RUnlock()
	if exists {
		game.UnregisterConnection(playerID, out)
	}
}

// Stats returns the result counters, or empty counters without a store.
func (gm *GameManager) Stats() (*storage.Stats, error) {
	if gm.store == nil {
		return &storage.Stats{}, nil
	}
	return gm.store.LoadStats()
}

// StartEviction runs Evict every interval until Close.
func (gm *GameManager) StartEviction(interval time.Duration, r Retention) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-gm.done:
				return
			case now := <-ticker.C:
				if n := gm.Evict(now, r); n > 0 {
					log.Infof("evicted %d games", n)
				}
			}
		}
	}()
}

// Evict drops games nobody is connected to: finished ones older than
// r.Finished are deleted, idle ones older than r.Idle are written back
// and released from memory. Without a store idle games are kept.
func (gm *GameManager) Evict(now time.Time, r Retention) int {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	evicted := 0
	for id, game := range gm.games {
		if game.Connections() > 0 {
			continue
		}
		age := now.Sub(game.UpdatedAt())
		switch {
		case game.Over() && age >= r.Finished:
			if gm.store != nil {
				if err := gm.store.DeleteGame(id); err != nil {
					log.Errorf("deleting game %s: %v", id, err)
					continue
				}
			}
		case !game.Over() && age >= r.Idle && gm.store != nil:
			if err := game.Persist(gm.store.SaveGame); err != nil {
				log.Errorf("saving idle game %s: %v", id, err)
				continue
			}
		default:
			continue
		}
		delete(gm.games, id)
		evicted++
	}
	return evicted
}

// persist saves the game. A storage failure is logged, not returned: the
// move has already been applied in memory.
func (gm *GameManager) persist(game *model.Game) {
	if gm.store == nil {
		return
	}
	if err := game.Persist(gm.store.SaveGame); err != nil {
		log.Errorf("saving game %s: %v", game.ID, err)
	}
}

func (gm *GameManager) recordIfOver(state model.GameState) {
	if gm.store == nil || state.Winner == "" || state.Resolve == nil {
		return
	}
	if err := gm.store.RecordResult(state.Winner, *state.Resolve); err != nil {
		log.Errorf("recording result of %s: %v", state.ID, err)
	}
}
