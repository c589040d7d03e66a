package position

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWorld matches every *InvalidWorldError via errors.Is.
	ErrInvalidWorld = errors.New("invalid world")
	// ErrDecode matches every *DecodeError via errors.Is.
	ErrDecode = errors.New("malformed position")
)

// InvalidWorldError is returned when a world name does not resolve.
type InvalidWorldError struct {
	Name string
}

func (e *InvalidWorldError) Error() string {
	return fmt.Sprintf("invalid world: %q", e.Name)
}

func (e *InvalidWorldError) Is(target error) bool {
	return target == ErrInvalidWorld
}

// DecodeError is returned for payloads that cannot be decoded into a Position.
type DecodeError struct {
	Input  string // offending payload or key, truncated
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := "decoding position"
	if e.Input != "" {
		msg += fmt.Sprintf(" %q", e.Input)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

const maxErrorInput = 64

func decodeErr(input, reason string, err error) *DecodeError {
	if len(input) > maxErrorInput {
		input = input[:maxErrorInput] + "..."
	}
	return &DecodeError{Input: input, Reason: reason, Err: err}
}
