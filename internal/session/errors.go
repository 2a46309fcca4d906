package session

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("item not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// PersistError reports a write that failed after the in-memory change was
// kept. Err is the persister's error.
type PersistError struct {
	Document string
	Version  int64
	Err      error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s (version %d): %v", e.Document, e.Version, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
