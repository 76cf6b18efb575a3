package models

import (
	"errors"
	"fmt"
)

// Failure kinds of call operations. Argument, not-found, conflict and
// settings errors are client-facing; storage and identity errors are
// logged in full and surfaced as a generic server error.
const (
	ErrKindArgument = "argument"
	ErrKindNotFound = "not_found"
	ErrKindConflict = "conflict"
	ErrKindSettings = "settings"
	ErrKindStorage  = "storage"
	ErrKindIdentity = "identity"
)

type CallError struct {
	Kind    string
	Message string
	Err     error
}

func (e *CallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CallError) Unwrap() error { return e.Err }

func NewArgumentError(format string, args ...any) error {
	return &CallError{Kind: ErrKindArgument, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...any) error {
	return &CallError{Kind: ErrKindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...any) error {
	return &CallError{Kind: ErrKindConflict, Message: fmt.Sprintf(format, args...)}
}

func NewSettingsError(format string, args ...any) error {
	return &CallError{Kind: ErrKindSettings, Message: fmt.Sprintf(format, args...)}
}

func NewStorageError(err error, format string, args ...any) error {
	return &CallError{Kind: ErrKindStorage, Message: fmt.Sprintf(format, args...), Err: err}
}

func NewIdentityError(err error, format string, args ...any) error {
	return &CallError{Kind: ErrKindIdentity, Message: fmt.Sprintf(format, args...), Err: err}
}

func ErrorKind(err error) string {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

func IsArgumentError(err error) bool { return ErrorKind(err) == ErrKindArgument }
func IsNotFound(err error) bool      { return ErrorKind(err) == ErrKindNotFound }
func IsConflict(err error) bool      { return ErrorKind(err) == ErrKindConflict }
func IsSettingsError(err error) bool { return ErrorKind(err) == ErrKindSettings }
func IsStorageError(err error) bool  { return ErrorKind(err) == ErrKindStorage }
func IsIdentityError(err error) bool { return ErrorKind(err) == ErrKindIdentity }
