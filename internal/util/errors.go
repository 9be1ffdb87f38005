package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailRegistered      = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrQuizNotAvailable     = errors.New("quiz not available")
	ErrAttemptLimitExceeded = errors.New("maximum attempts exceeded")
	ErrQuizHasNoQuestions   = errors.New("quiz has no questions")
	ErrSelfDemotion         = errors.New("you cannot demote yourself")
)

// ValidationError identifies the offending field of a malformed request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StorageError marks a transient persistence failure. The submission
// pipeline never retries it itself; callers may.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return "storage failure: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
