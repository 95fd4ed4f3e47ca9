package errors

import (
	"errors"
	"fmt"
)

// Common error types for categorization and handling

var (
	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransport indicates the analysis backend could not be reached
	ErrTransport = errors.New("backend transport failed")

	// ErrDecode indicates the analysis backend answered with an unreadable payload
	ErrDecode = errors.New("backend response malformed")
)

// WrapError wraps an error with context message
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Mark tags err with a sentinel category; errors.Is matches both.
func Mark(err error, category error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", category, err)
}

// IsInvalidInput checks if error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsTransport checks if error is a backend transport error
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsDecode checks if error is a malformed backend payload
func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}
