package controller

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/service"
	"github.com/benbeisheim/chessrules-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// outboxSize is how many messages may wait for a slow client before it is
// dropped.
const outboxSize = 32

// HandleConnection is called when a new WebSocket connection is established.
// Every write to c goes through one outbox, so state broadcasts and error
// replies never overlap.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID, _ := c.Locals("wsGameID").(string)
	playerID, _ := c.Locals("wsPlayerID").(string)
	out := model.NewOutbox(c, outboxSize)

	if err := wsc.gameService.RegisterConnection(gameID, playerID, out); err != nil {
		log.Warnf("failed to register connection for %s in %s: %v", playerID, gameID, err)
		if errors.Is(err, model.ErrAlreadyConnected) {
			out.Send(model.CloseFrame{Code: websocket.CloseNormalClosure, Text: "Connection already exists"})
		} else {
			out.Send(errorMessage(err.Error()))
		}
		out.Close()
		c.Close()
		return
	}
	defer func() {
		wsc.gameService.UnregisterConnection(gameID, playerID, out)
		out.Close()
	}()

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugf("read error: %v", err)
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			out.Send(errorMessage("malformed message"))
			continue
		}

		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			log.Debugf("game %s: rejected %s from %s: %v", gameID, msg.Type, playerID, err)
			out.Send(errorMessage(err.Error()))
		}
	}
}

// Accepted moves and resignations reach every client through the game's
// state broadcast, so only errors are answered directly.
func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.WSMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		_, err := wsc.gameService.HandleMove(gameID, playerID, move)
		return err

	case ws.MessageTypeResign:
		_, err := wsc.gameService.Resign(gameID, playerID)
		return err

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// HandleMatchmaking queues the player and writes the match once found. The
// reader goroutine never writes, so c has a single writer.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID, _ := c.Locals("playerID").(string)
	ch := make(chan string, 1)

	if err := wsc.gameService.RegisterMatchmakingChannel(playerID, ch); err != nil {
		c.WriteJSON(errorMessage(err.Error()))
		return
	}
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID)

	if err := wsc.gameService.JoinMatchmaking(playerID); err != nil {
		c.WriteJSON(errorMessage(err.Error()))
		return
	}

	// A read error means the client went away while waiting.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-ch:
		if ok {
			c.WriteMessage(websocket.TextMessage, []byte(event))
		}
	case <-gone:
		log.Debugf("matchmaking: %s disconnected while waiting", playerID)
	}
}

func errorMessage(text string) ws.Message {
	msg, _ := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: text})
	return msg
}
