package levels

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrLevelNotFound = errors.New("level not found")
	ErrInvalidName   = errors.New("invalid level name")
	ErrUnknownStore  = errors.New("unknown store kind")
)

// Source loads raw level text by name
type Source interface {
	Load(ctx context.Context, name string) ([]byte, error)
}

// Sink saves raw level text under a name, replacing any previous text
type Sink interface {
	Save(ctx context.Context, name string, text []byte) error
}

// Store is a named level collection
type Store interface {
	Source
	Sink
	List(ctx context.Context) ([]string, error)
	Close() error
}

// PersistenceError wraps a failed store operation
type PersistenceError struct {
	Op   string
	Name string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s levels: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s level %q: %v", e.Op, e.Name, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidateName checks that a level name is safe to use as a file name or
// a primary key
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
