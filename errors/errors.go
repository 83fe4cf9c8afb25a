package errors

import "fmt"

// Authentication and account errors.
var (
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrInvalidToken       = fmt.Errorf("invalid token")
)

// Room and membership errors.
var (
	ErrRoomNotFound   = fmt.Errorf("room not found")
	ErrAccessDenied   = fmt.Errorf("access denied")
	ErrNotOwner       = fmt.Errorf("only the room owner may perform this action")
	ErrAlreadyMember  = fmt.Errorf("user is already a member")
	ErrAlreadyInvited = fmt.Errorf("user has already been invited")
	ErrNotInvited     = fmt.Errorf("no pending invitation")
	ErrRoomNotTrashed = fmt.Errorf("room is not in the trash")
	ErrNotSubscribed  = fmt.Errorf("connection is not subscribed to the room")
)

// Infrastructure errors.
var (
	ErrStoreUnavailable = fmt.Errorf("store unavailable")
	ErrWorkerPanic      = fmt.Errorf("worker panic")
)

// Message validation errors.
var (
	ErrEmptyMessage   = fmt.Errorf("message body is empty")
	ErrMessageTooLong = fmt.Errorf("message body exceeds the maximum length")
)
