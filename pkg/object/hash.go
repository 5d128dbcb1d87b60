package object

import (
	"encoding/hex"

	"github.com/pjbgf/sha1cd"
)

// HashBytes computes the SHA-1 of data and returns it as a lowercase
// hex-encoded Hash. Objects are hashed over their raw bytes with no type
// envelope, so a blob's hash equals the digest of the staged file.
func HashBytes(data []byte) Hash {
	h := sha1cd.New()
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// EmptyTreeHash is the hash of the empty tree, which serializes to zero
// bytes.
var EmptyTreeHash = HashBytes(nil)
