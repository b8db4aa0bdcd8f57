package room

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrNotInRoom      = errors.New("not in room")
	ErrNeedTwoPlayers = errors.New("need two players")
	ErrSecretsMissing = errors.New("both players need secrets")
)
