package match

import (
	"errors"
	"fmt"
)

// Over notation failures reported by ParseOver.
var (
	ErrOutOfRange          = errors.New("over out of range")
	ErrInvalidBallNotation = errors.New("invalid ball notation")
	ErrOversExceeded       = errors.New("overs exceeded")
)

// ErrUnknownField is returned when a field name is not part of RawInput.
var ErrUnknownField = errors.New("unknown field")

// OverError records which over value failed to parse and why.
type OverError struct {
	Over float64
	Err  error
}

func (e *OverError) Error() string {
	return fmt.Sprintf("parse over %v: %v", e.Over, e.Err)
}

func (e *OverError) Unwrap() error { return e.Err }
