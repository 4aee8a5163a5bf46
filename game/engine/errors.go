package engine

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicatePlayer  = errors.New("duplicate player")
	ErrInvalidDirection = errors.New("invalid direction")
)

// InvariantViolation reports a programmer error against a layer invariant.
// It is never the result of ordinary play or editing.
type InvariantViolation struct {
	Err      error
	At       Point
	Existing Point
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: %v: can't add player at %s, player already at %s", e.Err, e.At, e.Existing)
}

func (e *InvariantViolation) Unwrap() error {
	return e.Err
}
