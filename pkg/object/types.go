package object

import (
	"fmt"
)

// Hash is a 40-character lowercase hex-encoded SHA-1 digest.
type Hash string

const (
	// HashSize is the width of a raw digest in bytes.
	HashSize = 20
	// HashHexSize is the width of a Hash in hex characters.
	HashHexSize = 2 * HashSize
)

// Valid reports whether h is exactly 40 lowercase hex characters.
func (h Hash) Valid() bool {
	if len(h) != HashHexSize {
		return false
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Short returns the first 8 characters of h, for display.
func (h Hash) Short() string {
	if len(h) > 8 {
		return string(h[:8])
	}
	return string(h)
}

// ParseHash validates s as a Hash.
func ParseHash(s string) (Hash, error) {
	h := Hash(s)
	if !h.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidHash, s)
	}
	return h, nil
}

// Kind tags a tree entry as a file or a subdirectory.
type Kind string

const (
	KindBlob Kind = "blob"
	KindTree Kind = "tree"
)

// TreeEntry is one named child of a tree object. Name is a single path
// component.
type TreeEntry struct {
	Kind Kind
	Name string
	Hash Hash
}

// IsTree reports whether the entry references a subtree.
func (e TreeEntry) IsTree() bool {
	return e.Kind == KindTree
}
