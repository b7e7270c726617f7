package categorytree

import (
	"errors"
	"fmt"
)

var (
	ErrMissingID   = errors.New("category record has no id")
	ErrMissingName = errors.New("category record has no name")
	ErrCycle       = errors.New("category parent chain never reaches a root")
	ErrInvalidJSON = errors.New("invalid category JSON")
)

// RecordError identifies the input record that stopped a build.
type RecordError struct {
	Index int
	ID    string
	Err   error
}

func (e *RecordError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("record %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("record %d (id %q): %v", e.Index, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
