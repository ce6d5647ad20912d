package core

import (
	"errors"

	"github.com/vovakirdan/roomchat/internal/service/rooms"
	"github.com/vovakirdan/roomchat/internal/session"
)

// Error codes for domain errors.
const (
	ErrCodeAlreadyConnected = "already_connected"
	ErrCodeAlreadyBound     = "already_bound"
	ErrCodeRoomNotFound     = "room_not_found"
	ErrCodeWrongPassword    = "wrong_password"
	ErrCodeRoomFull         = "room_full"
	ErrCodeForbidden        = "forbidden"
	ErrCodeValidation       = "validation_error"
	ErrCodeNotInRoom        = "not_in_room"
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeServerError      = "server_error"

	// Transport-level codes.
	ErrCodeUnsupportedVersion = "unsupported_version"
	ErrCodeRateLimited        = "rate_limited"
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// ErrorFrom maps a domain error to its wire form. Unknown errors become
// server_error without leaking their text.
func ErrorFrom(err error) *CoreError {
	var ce *CoreError
	switch {
	case errors.As(err, &ce):
		return ce
	case errors.Is(err, session.ErrAlreadyConnected):
		return coreError(ErrCodeAlreadyConnected, "this user is already connected")
	case errors.Is(err, rooms.ErrRoomNotFound):
		return coreError(ErrCodeRoomNotFound, "room not found")
	case errors.Is(err, rooms.ErrWrongPassword):
		return coreError(ErrCodeWrongPassword, "wrong room password")
	case errors.Is(err, rooms.ErrRoomFull):
		return coreError(ErrCodeRoomFull, "room is full")
	case errors.Is(err, rooms.ErrForbidden):
		return coreError(ErrCodeForbidden, "only the creator can delete this room")
	case errors.Is(err, rooms.ErrValidation):
		return coreError(ErrCodeValidation, err.Error())
	default:
		return coreError(ErrCodeServerError, "internal server error")
	}
}
