package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound     = errors.New("room-not-found")
	ErrRoomCodeTaken    = errors.New("room-code-taken")
	ErrRoomFull         = errors.New("room-full")
	ErrPlayerNotFound   = errors.New("player-not-found")
	ErrMatchNotFound    = errors.New("match-not-found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidOperation = errors.New("invalid-operation")
)

// ErrColorsExhausted means a room holds more players than there are
// colors. Capacity rules bound rooms to four players, so this is an
// invariant violation, not a user error.
var ErrColorsExhausted = errors.New("colors-exhausted")

var UnexpectedDatabaseError = errors.New("unexpected-database-error")

// ValidationError marks malformed or out-of-range input. It is always
// reported to the caller and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("'%s' %s", e.Field, e.Message)
}

func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var verr ValidationError
	return errors.As(err, &verr)
}
