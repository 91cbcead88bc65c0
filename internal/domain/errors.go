package domain

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidTarget    = errors.New("invalid target")
	ErrMalformedCommand = errors.New("malformed command")
	ErrRateLimited      = errors.New("rate limited")
	ErrNotInRoom        = errors.New("not in a room")
)

const (
	CodeRoomNotFound     = "room-not-found"
	CodePermissionDenied = "permission-denied"
	CodeInvalidTarget    = "invalid-target"
	CodeMalformed        = "malformed-command"
	CodeRateLimited      = "rate-limited"
	CodeNotInRoom        = "not-in-room"
	CodeInternal         = "internal"
)

// CodeOf maps an error onto the wire error code.
func CodeOf(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return CodeRoomNotFound
	case errors.Is(err, ErrPermissionDenied):
		return CodePermissionDenied
	case errors.Is(err, ErrInvalidTarget):
		return CodeInvalidTarget
	case errors.Is(err, ErrMalformedCommand),
		errors.Is(err, ErrUsernameEmpty),
		errors.Is(err, ErrUsernameTooLong):
		return CodeMalformed
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, ErrNotInRoom):
		return CodeNotInRoom
	default:
		return CodeInternal
	}
}
