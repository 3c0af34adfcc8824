package model

import "github.com/benbeisheim/chessrules-backend/internal/chess"

// Player is a connected client identified by the X-Player-ID it presents.
type Player struct {
	ID    string
	Color chess.Color
}

// ClientPlayer is the per-seat view sent to clients. PlayTime is the
// player's accumulated thinking time in milliseconds. ClockRunning is set
// for the player whose turn is being timed.
type ClientPlayer struct {
	ID           string      `json:"name"`
	Color        chess.Color `json:"color"`
	PlayTime     int64       `json:"playTime"`
	TurnTime     int64       `json:"turnTime"`
	ClockRunning bool        `json:"clockRunning"`
}
