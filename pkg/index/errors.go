package index

import (
	"errors"
	"fmt"
)

var (
	// ErrPathNotFound is returned when the file to stage does not exist.
	ErrPathNotFound = errors.New("path not found")
	// ErrInvalidPath is returned for paths that do not name a single file,
	// including directories.
	ErrInvalidPath = errors.New("invalid path")
	// ErrCorruptIndex is returned when an index line cannot be split into a
	// hash and a path.
	ErrCorruptIndex = errors.New("corrupt index")
)

// CorruptIndexError identifies the offending line of a malformed index.
type CorruptIndexError struct {
	Line   int
	Text   string
	Reason string
}

func (e *CorruptIndexError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: line %d: %s: %q", ErrCorruptIndex, e.Line, e.Reason, e.Text)
}

func (e *CorruptIndexError) Is(target error) bool {
	return target == ErrCorruptIndex
}
