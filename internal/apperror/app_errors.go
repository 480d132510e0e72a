package apperror

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrNoAvailablePosition = errors.New("no available position")
	ErrRateLimitExceeded   = errors.New("rate limit exceeded")
	ErrInvalidDirection    = errors.New("invalid direction")
)
