package room

import "errors"

// 房间错误定义

var (
	ErrRoomNotFound = errors.New("ROOM_NOT_FOUND")
	ErrRoomLimit    = errors.New("ROOM_LIMIT_REACHED")
	ErrInvalidName  = errors.New("INVALID_NAME")
	ErrEmptyMessage = errors.New("EMPTY_MESSAGE")
	ErrRoomExists   = errors.New("ROOM_EXISTS")
)
