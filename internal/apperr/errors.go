// Package apperr provides coded application errors for the offline core.
package apperr

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure that callers can react to.
type Code string

const (
	// Local store errors
	ErrStorageUnavailable Code = "STORAGE_UNAVAILABLE"
	ErrWriteFailed        Code = "WRITE_FAILED"
	ErrReadFailed         Code = "READ_FAILED"
	ErrUnknownPartition   Code = "UNKNOWN_PARTITION"
	ErrUnknownIndex       Code = "UNKNOWN_INDEX"

	// Pending mutation queue errors
	ErrEnqueueFailed Code = "ENQUEUE_FAILED"
	ErrReplayFailed  Code = "REPLAY_FAILED"
	ErrUnknownKind   Code = "UNKNOWN_KIND"

	// Remote service errors
	ErrRemoteRejected    Code = "REMOTE_REJECTED"
	ErrRemoteUnreachable Code = "REMOTE_UNREACHABLE"

	// Relay errors
	ErrUploadFailed  Code = "UPLOAD_FAILED"
	ErrNotConfigured Code = "NOT_CONFIGURED"
)

// Error is an application error with a stable code and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a code.
func Wrap(code Code, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var appErr *Error
	for errors.As(err, &appErr) {
		if appErr.Code == code {
			return true
		}
		err = appErr.Err
		appErr = nil
	}
	return false
}

// CodeOf returns the outermost code in err's chain, or "" if none.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
