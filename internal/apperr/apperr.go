// Package apperr defines the error kinds the interaction core reports to its
// callers. Handlers match kinds with errors.Is instead of comparing status
// strings.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or malformed input. Never retried.
	ErrValidation = errors.New("invalid request")
	// ErrNotFound marks an unknown user or message.
	ErrNotFound = errors.New("not found")
	// ErrQuotaExceeded marks a swipe rejected by the daily limit.
	ErrQuotaExceeded = errors.New("daily swipe limit reached")
	// ErrNotMatched marks a chat operation between users without an active match.
	ErrNotMatched = errors.New("users are not matched")
	// ErrUnauthorized marks an operation on a resource the caller does not own.
	ErrUnauthorized = errors.New("not authorized")
	// ErrStorage marks a transaction failure. The operation is rolled back and
	// the caller sees a generic failure.
	ErrStorage = errors.New("storage failure")
)

// Validationf wraps ErrValidation with a caller-facing detail message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a caller-facing detail message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Storage wraps a driver error as an ErrStorage while keeping the cause
// available for errors.Is/As.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
