package game

import "errors"

var (
	ErrRoomNotFound     = errors.New("room-not-found")
	ErrRoomFull         = errors.New("room-full")
	ErrGameInProgress   = errors.New("game-in-progress")
	ErrNotEnoughPlayers = errors.New("not-enough-players")
	ErrInvalidPlayer    = errors.New("invalid-room-or-player")
	ErrNoMemes          = errors.New("no-memes-available")
	ErrLobbyBusy        = errors.New("lobby-busy")
)
