package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoSession    = errors.New("no session")

	// ErrNoResult is an invalid input: the export was asked for too early.
	ErrNoResult = fmt.Errorf("%w: no estimate result yet", ErrInvalidInput)
)

// RejectError is a recoverable rejection of one action. The conversation
// stays where it was and Notice is shown to the user with a re-prompt.
type RejectError struct {
	Kind   error
	Notice string
}

func (e *RejectError) Error() string {
	return e.Kind.Error() + ": " + e.Notice
}

func (e *RejectError) Unwrap() error {
	return e.Kind
}

func Invalid(format string, args ...any) error {
	return &RejectError{Kind: ErrInvalidInput, Notice: fmt.Sprintf(format, args...)}
}

func Missing(format string, args ...any) error {
	return &RejectError{Kind: ErrNotFound, Notice: fmt.Sprintf(format, args...)}
}

// AsReject extracts a recoverable rejection from err.
func AsReject(err error) (*RejectError, bool) {
	var re *RejectError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
