package controller

import (
	"errors"
	"strconv"

	"github.com/benbeisheim/chessrules-backend/internal/chess"
	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// statusFor maps a service error to the HTTP status reported to clients.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrNotInGame), errors.Is(err, chess.ErrNotOwnersPiece):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrGameFull), errors.Is(err, model.ErrNotStarted),
		errors.Is(err, model.ErrAlreadyQueued),
		errors.Is(err, chess.ErrWrongTurn), errors.Is(err, chess.ErrGameOver):
		return fiber.StatusConflict
	case chess.IsDefect(err):
		return fiber.StatusInternalServerError
	case errors.Is(err, chess.ErrOutOfBounds), errors.Is(err, chess.ErrFriendlyOccupied),
		errors.Is(err, chess.ErrIllegalShape), errors.Is(err, chess.ErrBlockedPath),
		errors.Is(err, chess.ErrUnknownPiece), errors.Is(err, chess.ErrPieceCaptured):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

func sendError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func playerID(c *fiber.Ctx) string {
	id, _ := c.Locals("playerID").(string)
	return id
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	gameID, err := gc.gameService.CreateGame()
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")

	color, err := gc.gameService.JoinGame(gameID, playerID(c))
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	if err := gc.gameService.JoinMatchmaking(playerID(c)); err != nil {
		return sendError(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

// MakeMove takes {"piece": 12, "to": "E4"}.
func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var move model.WSMove
	if err := c.BodyParser(&move); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid move body",
		})
	}

	state, err := gc.gameService.HandleMove(c.Params("gameId"), playerID(c), move)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Resign(c *fiber.Ctx) error {
	state, err := gc.gameService.Resign(c.Params("gameId"), playerID(c))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Destinations(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("pieceId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid piece id",
		})
	}

	squares, err := gc.gameService.Destinations(c.Params("gameId"), chess.PieceID(id))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(squares)
}

func (gc *GameController) Stats(c *fiber.Ctx) error {
	stats, err := gc.gameService.Stats()
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(stats)
}
