package object

import (
	"errors"
	"fmt"
)

var (
	// ErrObjectNotFound is returned when no object is stored under a hash.
	ErrObjectNotFound = errors.New("object not found")
	// ErrSerialization is returned when tree bytes fail to parse.
	ErrSerialization = errors.New("malformed tree object")
	// ErrInvalidHash is returned for strings that are not 40 lowercase hex
	// characters.
	ErrInvalidHash = errors.New("invalid object hash")
)

// VerifyError records an object whose stored bytes no longer hash to its
// name.
type VerifyError struct {
	Hash   Hash
	Actual Hash
}

func (e *VerifyError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("object %s: content hashes to %s", e.Hash, e.Actual)
}
