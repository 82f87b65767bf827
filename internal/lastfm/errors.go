package lastfm

import (
	"fmt"
)

// Error is an error payload returned by the Last.fm API.
type Error struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("lastfm: error %d: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code, so errors.Is works against
// the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Temporary reports whether the call is worth retrying.
func (e *Error) Temporary() bool {
	switch e.Code {
	case ErrCodeServiceOffline, ErrCodeTempUnavailable, ErrCodeRateLimitExceeded:
		return true
	default:
		return false
	}
}

// Common Last.fm error codes.
const (
	ErrCodeInvalidService    = 2
	ErrCodeInvalidMethod     = 3
	ErrCodeInvalidFormat     = 5
	ErrCodeInvalidParameters = 6
	ErrCodeOperationFailed   = 8
	ErrCodeInvalidAPIKey     = 10
	ErrCodeServiceOffline    = 11
	ErrCodeTempUnavailable   = 16
	ErrCodeSuspendedAPIKey   = 26
	ErrCodeRateLimitExceeded = 29
)

// ErrUserNotFound is what Last.fm reports (as invalid parameters) for
// an unknown username.
var ErrUserNotFound = &Error{Code: ErrCodeInvalidParameters, Message: "User not found"}
