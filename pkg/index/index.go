// Package index implements the staging index: a flat, path-keyed record of
// the content hash each file will have in the next tree build.
//
// The on-disk form is plain text, one "<hash> <path>" entry per line, lines
// joined by "\n" with no trailing newline. File order is update order: a
// re-staged path moves to the end.
package index

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog/log"

	"github.com/odvcencio/twig/internal/lockfile"
	"github.com/odvcencio/twig/pkg/object"
)

// Entry is one staged file.
type Entry struct {
	Path string
	Hash object.Hash
}

// String renders e as an index line.
func (e Entry) String() string {
	return string(e.Hash) + " " + e.Path
}

// Index is the staging index file stored at path within fs.
type Index struct {
	fs   billy.Filesystem
	path string
}

// New returns an Index backed by the file at path in fs. The file need not
// exist; a missing index is empty.
func New(fs billy.Filesystem, path string) *Index {
	return &Index{fs: fs, path: path}
}

// Parse decodes index file content. A single trailing newline is tolerated
// so hand-edited files still load.
func Parse(data []byte) ([]Entry, error) {
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil, nil
	}

	lines := strings.Split(text, "\n")
	entries := make([]Entry, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for i, line := range lines {
		hash, path, ok := strings.Cut(line, " ")
		if !ok {
			return nil, &CorruptIndexError{Line: i + 1, Text: line, Reason: "missing separator"}
		}
		h := object.Hash(hash)
		if !h.Valid() {
			return nil, &CorruptIndexError{Line: i + 1, Text: line, Reason: "bad hash"}
		}
		if path == "" {
			return nil, &CorruptIndexError{Line: i + 1, Text: line, Reason: "empty path"}
		}
		if _, dup := seen[path]; dup {
			return nil, &CorruptIndexError{Line: i + 1, Text: line, Reason: "duplicate path"}
		}
		seen[path] = struct{}{}
		entries = append(entries, Entry{Path: path, Hash: h})
	}
	return entries, nil
}

// Marshal encodes entries in index file form.
func Marshal(entries []Entry) []byte {
	var buf bytes.Buffer
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(e.String())
	}
	return buf.Bytes()
}

func (ix *Index) read() ([]Entry, error) {
	f, err := ix.fs.Open(ix.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	entries, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return entries, nil
}

// Snapshot returns the staged entries in file order.
func (ix *Index) Snapshot() ([]Entry, error) {
	return ix.read()
}

// Lookup returns the entry staged for path, if any.
func (ix *Index) Lookup(path string) (Entry, bool, error) {
	p := Normalize(path)
	entries, err := ix.read()
	if err != nil {
		return Entry{}, false, err
	}
	for _, e := range entries {
		if e.Path == p {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

// Stage records h as the content of path. It reports whether the index
// changed:
//
//   - same path and same hash: nothing is written and the file stays
//     byte-for-byte identical;
//   - otherwise the prior entry for path is dropped and (path, h) is
//     appended.
//
// Entries that collide with path as file versus directory (staging "x/y"
// while "x" is staged, or the reverse) are dropped as well, since a working
// tree cannot hold both.
func (ix *Index) Stage(path string, h object.Hash) (bool, error) {
	p := Normalize(path)
	if err := ValidatePath(p); err != nil {
		return false, fmt.Errorf("stage %q: %w", path, err)
	}
	if !h.Valid() {
		return false, fmt.Errorf("stage %q: %w: %q", p, object.ErrInvalidHash, h)
	}

	lock, err := lockfile.Acquire(ix.fs, ix.path)
	if err != nil {
		return false, fmt.Errorf("stage %q: lock: %w", p, err)
	}

	entries, err := ix.read()
	if err != nil {
		lock.Release()
		return false, fmt.Errorf("stage %q: %w", p, err)
	}

	next := make([]Entry, 0, len(entries)+1)
	for _, e := range entries {
		if e.Path == p {
			if e.Hash == h {
				lock.Release()
				log.Debug().Str("path", p).Msg("stage: unchanged")
				return false, nil
			}
			continue
		}
		if conflicts(e.Path, p) {
			log.Debug().Str("path", p).Str("evicted", e.Path).Msg("stage: dropped conflicting entry")
			continue
		}
		next = append(next, e)
	}
	next = append(next, Entry{Path: p, Hash: h})

	if err := lock.Commit(Marshal(next)); err != nil {
		return false, fmt.Errorf("stage %q: %w", p, err)
	}
	log.Debug().Str("path", p).Str("hash", string(h)).Msg("stage: updated")
	return true, nil
}

// Remove drops the entry for path. It reports whether an entry existed.
func (ix *Index) Remove(path string) (bool, error) {
	p := Normalize(path)

	lock, err := lockfile.Acquire(ix.fs, ix.path)
	if err != nil {
		return false, fmt.Errorf("unstage %q: lock: %w", p, err)
	}

	entries, err := ix.read()
	if err != nil {
		lock.Release()
		return false, fmt.Errorf("unstage %q: %w", p, err)
	}

	next := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Path != p {
			next = append(next, e)
		}
	}
	if len(next) == len(entries) {
		lock.Release()
		return false, nil
	}

	if err := lock.Commit(Marshal(next)); err != nil {
		return false, fmt.Errorf("unstage %q: %w", p, err)
	}
	return true, nil
}

// Replace overwrites the whole index with entries, in the given order. It
// reports whether the file changed; identical content is not rewritten.
func (ix *Index) Replace(entries []Entry) (bool, error) {
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if err := ValidatePath(e.Path); err != nil {
			return false, fmt.Errorf("replace index: entry %d: %w", i+1, err)
		}
		if !e.Hash.Valid() {
			return false, fmt.Errorf("replace index: entry %d: %w: %q", i+1, object.ErrInvalidHash, e.Hash)
		}
		if _, dup := seen[e.Path]; dup {
			return false, fmt.Errorf("replace index: %w: duplicate path %q", ErrCorruptIndex, e.Path)
		}
		seen[e.Path] = struct{}{}
	}

	lock, err := lockfile.Acquire(ix.fs, ix.path)
	if err != nil {
		return false, fmt.Errorf("replace index: lock: %w", err)
	}
	current, err := ix.read()
	if err != nil {
		lock.Release()
		return false, fmt.Errorf("replace index: %w", err)
	}
	next := Marshal(entries)
	if bytes.Equal(Marshal(current), next) {
		lock.Release()
		return false, nil
	}
	if err := lock.Commit(next); err != nil {
		return false, fmt.Errorf("replace index: %w", err)
	}
	return true, nil
}
