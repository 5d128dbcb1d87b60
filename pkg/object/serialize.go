package object

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// MarshalTree serializes a tree's entry list. Entries are sorted by Name
// (byte-wise) for deterministic output. Each entry is one line:
//
//	blob|tree <hash> <name>
//
// Lines are joined by a single newline with no trailing newline, so the
// empty tree serializes to zero bytes.
func MarshalTree(entries []TreeEntry) []byte {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	for i, e := range sorted {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(string(e.Kind))
		buf.WriteByte(' ')
		buf.WriteString(string(e.Hash))
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
	}
	return buf.Bytes()
}

// UnmarshalTree parses a tree's entry list from its serialized form. Empty
// input is the empty tree. Names must be unique single path components in
// ascending order, which is what MarshalTree produces.
func UnmarshalTree(data []byte) ([]TreeEntry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	lines := strings.Split(string(data), "\n")
	entries := make([]TreeEntry, 0, len(lines))
	for i, line := range lines {
		e, err := parseTreeLine(line)
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: line %d: %w", i+1, err)
		}
		if i > 0 && entries[i-1].Name >= e.Name {
			return nil, fmt.Errorf("unmarshal tree: line %d: %w: %q not sorted after %q",
				i+1, ErrSerialization, e.Name, entries[i-1].Name)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseTreeLine(line string) (TreeEntry, error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return TreeEntry{}, fmt.Errorf("%w: malformed entry %q", ErrSerialization, line)
	}

	kind := Kind(parts[0])
	if kind != KindBlob && kind != KindTree {
		return TreeEntry{}, fmt.Errorf("%w: unknown tag %q", ErrSerialization, parts[0])
	}
	h := Hash(parts[1])
	if !h.Valid() {
		return TreeEntry{}, fmt.Errorf("%w: bad hash %q", ErrSerialization, parts[1])
	}
	name := parts[2]
	if name == "" || name == "." || name == ".." || strings.Contains(name, "/") {
		return TreeEntry{}, fmt.Errorf("%w: bad name %q", ErrSerialization, name)
	}
	return TreeEntry{Kind: kind, Name: name, Hash: h}, nil
}

// Classify guesses the kind of a stored object from its bytes. Objects are
// stored without a type header, so anything that parses as a tree is
// reported as one; everything else is a blob. The empty object is the empty
// tree.
func Classify(data []byte) Kind {
	if _, err := UnmarshalTree(data); err == nil {
		return KindTree
	}
	return KindBlob
}
