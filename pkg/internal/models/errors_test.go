package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindSurvivesWrapping(t *testing.T) {
	err := NewConflictError("call already created")
	wrapped := fmt.Errorf("handling request: %w", err)

	if !IsConflict(wrapped) {
		t.Fatalf("expected a conflict through wrapping, got %v", wrapped)
	}
	if ErrorKind(wrapped) != ErrKindConflict {
		t.Fatalf("unexpected kind: %s", ErrorKind(wrapped))
	}
}

func TestErrorKindOfPlainError(t *testing.T) {
	if kind := ErrorKind(errors.New("boom")); kind != "" {
		t.Fatalf("expected no kind for a plain error, got %s", kind)
	}
}

func TestStorageErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStorageError(cause, "error reading call %s", "c1")

	if !errors.Is(err, cause) {
		t.Fatalf("expected the cause preserved")
	}
	if !IsStorageError(err) {
		t.Fatalf("expected a storage error, got %v", err)
	}
}
