package model

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chessrules-backend/internal/chess"
	"github.com/benbeisheim/chessrules-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
)

var (
	ErrGameFull   = errors.New("game is full")
	ErrNotInGame  = errors.New("player not in game")
	ErrNotStarted = errors.New("waiting for an opponent")

	ErrAlreadyConnected = errors.New("connection already exists")
)

// Resolutions reported once a game is over.
const (
	ResolveKingCaptured = "kingCaptured"
	ResolveResignation  = "resignation"
)

// GameConnections holds the outbox of every connected player. It is
// guarded by the owning Game's mutex.
type GameConnections struct {
	connections map[string]*Outbox // playerID -> outbox
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]*Outbox),
	}
}

// Game is one networked session around a chess.Game. Every method takes
// the game mutex, so moves on the same game are applied one at a time and
// their states are queued to clients in the same order.
type Game struct {
	ID          string
	mu          sync.Mutex
	version     uint64
	chess       *chess.Game
	seats       map[chess.Color]string
	clocks      map[chess.Color]*Clock
	connections *GameConnections
	sound       string
	resolve     string
	lastMove    *MoveView
	updatedAt   time.Time

	saveMu       sync.Mutex
	savedVersion uint64
}

type GameState struct {
	ID             string         `json:"id"`
	Sound          string         `json:"sound"`
	Board          *BoardState    `json:"boardState"`
	ToMove         chess.Color    `json:"toMove"`
	Winner         chess.Color    `json:"winner,omitempty"`
	Resolve        *string        `json:"resolve"`
	CapturedPieces CapturedPieces `json:"capturedPieces"`
	Players        struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
	LastMove *MoveView `json:"lastMove"`
}

func NewGame(id string) *Game {
	return newGame(id, chess.NewGame())
}

func newGame(id string, cg *chess.Game) *Game {
	return &Game{
		ID:          id,
		chess:       cg,
		seats:       make(map[chess.Color]string),
		clocks:      map[chess.Color]*Clock{chess.White: NewClock(0), chess.Black: NewClock(0)},
		connections: NewGameConnections(),
		version:     1,
		updatedAt:   time.Now(),
	}
}

// AddPlayer seats playerID, White first. A player who is already seated
// gets their existing color back.
func (g *Game) AddPlayer(playerID string) (chess.Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.colorOf(playerID); ok {
		return c, nil
	}
	for _, c := range []chess.Color{chess.White, chess.Black} {
		if g.seats[c] == "" {
			g.seats[c] = playerID
			log.Infof("game %s: %s seated as %s", g.ID, playerID, c)
			g.touch()
			if g.started() {
				g.startTurnClock()
			}
			return c, nil
		}
	}
	return "", ErrGameFull
}

// touch records a change to the session.
func (g *Game) touch() {
	g.version++
	g.updatedAt = time.Now()
}

func (g *Game) colorOf(playerID string) (chess.Color, bool) {
	for c, id := range g.seats {
		if id != "" && id == playerID {
			return c, true
		}
	}
	return "", false
}

func (g *Game) started() bool {
	return g.seats[chess.White] != "" && g.seats[chess.Black] != ""
}

func (g *Game) startTurnClock() {
	if turn, ok := g.chess.Turn(); ok {
		g.clocks[turn].Start()
	}
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.stateLocked()
}

func (g *Game) stateLocked() GameState {
	state := GameState{
		ID:             g.ID,
		Sound:          g.sound,
		Board:          newBoardState(g.chess.Position()),
		CapturedPieces: newCapturedPieces(g.chess),
		LastMove:       g.lastMove,
	}
	state.ToMove, _ = g.chess.Turn()
	state.Winner, _ = g.chess.Winner()
	if g.resolve != "" {
		resolve := g.resolve
		state.Resolve = &resolve
	}
	state.Players.White = g.clientPlayer(chess.White)
	state.Players.Black = g.clientPlayer(chess.Black)
	return state
}

func (g *Game) clientPlayer(c chess.Color) ClientPlayer {
	return ClientPlayer{
		ID:           g.seats[c],
		Color:        c,
		PlayTime:     g.clocks[c].Total().Milliseconds(),
		TurnTime:     g.clocks[c].Current().Milliseconds(),
		ClockRunning: g.clocks[c].Running(),
	}
}

// MakeMove applies a move for the seated player and broadcasts the new
// state. A rejected move changes nothing.
func (g *Game) MakeMove(playerID string, move WSMove) (GameState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	log.Debugf("game %s: move %+v from %s", g.ID, move, playerID)

	color, ok := g.colorOf(playerID)
	if !ok {
		return GameState{}, ErrNotInGame
	}
	if !g.started() {
		return GameState{}, ErrNotStarted
	}
	to, err := chess.ParseSquare(move.To)
	if err != nil {
		return GameState{}, err
	}

	mv, err := g.chess.TakeTurn(color, move.Piece, to)
	if err != nil {
		return GameState{}, err
	}

	g.clocks[color].Stop()
	g.startTurnClock()

	g.lastMove = newMoveView(g.chess, mv)
	g.sound = "move"
	if mv.Captured != 0 {
		g.sound = "capture"
	}
	if g.chess.Over() {
		g.resolve = ResolveKingCaptured
		g.sound = "gameOver"
	}
	g.touch()

	state := g.stateLocked()
	g.broadcastLocked(state)
	return state, nil
}

// Resign ends the game in favour of playerID's opponent.
func (g *Game) Resign(playerID string) (GameState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	color, ok := g.colorOf(playerID)
	if !ok {
		return GameState{}, ErrNotInGame
	}
	if err := g.chess.Resign(color); err != nil {
		return GameState{}, err
	}
	for _, c := range g.clocks {
		c.Stop()
	}
	g.resolve = ResolveResignation
	g.sound = "gameOver"
	g.touch()

	state := g.stateLocked()
	g.broadcastLocked(state)
	return state, nil
}

// Destinations lists the squares piece id may move to, in display form.
func (g *Game) Destinations(id chess.PieceID) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.chess.Piece(id) == nil {
		return nil, fmt.Errorf("%w: %d", chess.ErrUnknownPiece, id)
	}
	out := make([]string, 0)
	for _, sq := range g.chess.Destinations(id) {
		out = append(out, sq.String())
	}
	return out, nil
}

func (g *Game) Over() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.chess.Over()
}

func (g *Game) UpdatedAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.updatedAt
}

// Connections reports how many players are connected.
func (g *Game) Connections() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.connections.connections)
}

// RegisterConnection attaches out to playerID and queues the current state
// on it. A second connection for the same player is refused with
// ErrAlreadyConnected.
func (g *Game) RegisterConnection(playerID string, out *Outbox) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, seated := g.colorOf(playerID)
	if !seated && g.started() {
		return ErrNotInGame
	}
	if _, exists := g.connections.connections[playerID]; exists {
		return ErrAlreadyConnected
	}

	g.connections.connections[playerID] = out
	log.Infof("game %s: connection registered for %s", g.ID, playerID)

	g.broadcastLocked(g.stateLocked())
	return nil
}

// UnregisterConnection detaches out. A newer connection registered for the
// same player is left alone.
func (g *Game) UnregisterConnection(playerID string, out *Outbox) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.connections.connections[playerID] == out {
		log.Infof("game %s: connection for %s closed", g.ID, playerID)
		delete(g.connections.connections, playerID)
	}
}

// broadcastLocked queues state on every connection and drops the ones
// that cannot take it. The caller holds g.mu.
func (g *Game) broadcastLocked(state GameState) {
	if len(g.connections.connections) == 0 {
		return
	}
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		log.Errorf("game %s: encode state: %v", g.ID, err)
		return
	}

	for playerID, out := range g.connections.connections {
		if !out.Send(msg) {
			log.Warnf("game %s: failed to queue state for %s", g.ID, playerID)
			delete(g.connections.connections, playerID)
		}
	}
}
