package apperror

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found, please check the code and try again")
	ErrGameInProgress      = errors.New("game already in progress")
	ErrRoomFull            = errors.New("room is full")
	ErrAlreadyInRoom       = errors.New("player is already in a room")
	ErrNotInRoom           = errors.New("player is not in a room")
	ErrInvalidMessage      = errors.New("invalid message format")
	ErrUnrecognizedMessage = errors.New("unrecognized message type")
	ErrNotConnected        = errors.New("not connected to server")
	ErrReconnectExhausted  = errors.New("unable to connect to server")
	ErrSessionDisposed     = errors.New("session is disposed")
	ErrEmptyRoomCode       = errors.New("room code is empty")
)
