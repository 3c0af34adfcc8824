package service

import (
	"fmt"

	"github.com/benbeisheim/chessrules-backend/internal/chess"
	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/storage"
	"github.com/google/uuid"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) JoinGame(gameID string, playerID string) (chess.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) CreateGame() (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) HandleMove(gameID string, playerID string, move model.WSMove) (model.GameState, error) {
	return gs.gameManager.MakeMove(gameID, playerID, move)
}

func (gs *GameService) Resign(gameID string, playerID string) (model.GameState, error) {
	return gs.gameManager.Resign(gameID, playerID)
}

func (gs *GameService) Destinations(gameID string, pieceID chess.PieceID) ([]string, error) {
	return gs.gameManager.Destinations(gameID, pieceID)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, out *model.Outbox) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, out)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, out *model.Outbox) {
	gs.gameManager.UnregisterConnection(gameID, playerID, out)
}

func (gs *GameService) Stats() (*storage.Stats, error) {
	return gs.gameManager.Stats()
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan string) error {
	return gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID)
}
