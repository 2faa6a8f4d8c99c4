package config

import (
	"fmt"
	"strings"
)

// ValidationError is returned when a rotation fails input validation
type ValidationError struct {
	Field       string
	Reason      string
	InvalidKeys []string
}

func (e *ValidationError) Error() string {
	if len(e.InvalidKeys) > 0 {
		return fmt.Sprintf("invalid %s: the following keys are not valid: %s", e.Field, strings.Join(e.InvalidKeys, ", "))
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IndexError is returned when a rotation index is out of range
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("rotation index %d out of range [0, %d)", e.Index, e.Len)
}

// PersistenceError wraps a read or write failure on a store file.
// The in-memory state is kept when a write fails.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
