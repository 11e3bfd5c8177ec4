package services

import (
	"errors"
	"time"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrValidation    = errors.New("validation failed")
)

// ValidationError carries the message shown to the user. It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// Clock returns the current time. Services take one so tests can pin "today".
type Clock func() time.Time
