package query

import (
	"errors"
	"fmt"
)

var ErrInvalidQuery = errors.New("invalid query")

// SyntaxError reports where a query stopped making sense.
type SyntaxError struct {
	Pos   int
	Token string
	Msg   string
}

func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("invalid query at %d: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("invalid query at %d near %q: %s", e.Pos, e.Token, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrInvalidQuery
}
