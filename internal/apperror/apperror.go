// Package apperror defines the error taxonomy shared by the aggregation
// engine: invalid viewer input, transient store failures (retryable),
// permission denials (terminal) and missing documents.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL = errors.New("invalid url")
	ErrTransient  = errors.New("store transient failure")
	ErrPermission = errors.New("store permission denied")
	ErrNotFound   = errors.New("not found")
)

type AppError struct {
	Err     error  // sentinel this error classifies as
	Message string // human-readable message
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func InvalidURL(raw string, cause error) *AppError {
	return &AppError{
		Err:     ErrInvalidURL,
		Message: fmt.Sprintf("invalid url %q: %v", raw, cause),
	}
}

func Transient(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrTransient,
		Message: fmt.Sprintf("%s: %v", op, cause),
	}
}

func Permission(op string) *AppError {
	return &AppError{
		Err:     ErrPermission,
		Message: fmt.Sprintf("%s: permission denied", op),
	}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// Retryable reports whether err is worth retrying with backoff.
// Permission denials and missing documents never are.
func Retryable(err error) bool {
	return errors.Is(err, ErrTransient)
}
