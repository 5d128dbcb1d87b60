package tree

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/twig/pkg/index"
	"github.com/odvcencio/twig/pkg/object"
)

// SkipDir may be returned by a WalkFunc on a tree entry to skip its
// contents.
var SkipDir = errors.New("skip this directory")

// ObjectReader is the slice of the object store a walk needs.
type ObjectReader interface {
	Get(h object.Hash) ([]byte, error)
}

// WalkFunc is called for every entry reachable from the walked tree. path is
// the entry's full slash-separated path from the root.
type WalkFunc func(path string, e object.TreeEntry) error

// Walk visits the tree rooted at root in pre-order, children in name order.
func Walk(r ObjectReader, root object.Hash, fn WalkFunc) error {
	return walkRec(r, root, "", fn)
}

func walkRec(r ObjectReader, h object.Hash, prefix string, fn WalkFunc) error {
	data, err := r.Get(h)
	if err != nil {
		return fmt.Errorf("walk tree %q: %w", prefix, err)
	}
	entries, err := object.UnmarshalTree(data)
	if err != nil {
		return fmt.Errorf("walk tree %q (%s): %w", prefix, h, err)
	}

	for _, e := range entries {
		p := e.Name
		if prefix != "" {
			p = prefix + "/" + e.Name
		}
		if err := fn(p, e); err != nil {
			if errors.Is(err, SkipDir) && e.IsTree() {
				continue
			}
			return err
		}
		if e.IsTree() {
			if err := walkRec(r, e.Hash, p, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flatten returns every file reachable from root as index entries in walk
// order. Building the result again yields root.
func Flatten(r ObjectReader, root object.Hash) ([]index.Entry, error) {
	var out []index.Entry
	err := Walk(r, root, func(path string, e object.TreeEntry) error {
		if !e.IsTree() {
			out = append(out, index.Entry{Path: path, Hash: e.Hash})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Lookup finds the entry at the slash-separated path below root. It reports
// false when a component is missing or descends through a blob.
func Lookup(r ObjectReader, root object.Hash, path string) (object.TreeEntry, bool, error) {
	parts := strings.Split(index.Normalize(path), "/")
	current := root

	for i, part := range parts {
		data, err := r.Get(current)
		if err != nil {
			return object.TreeEntry{}, false, fmt.Errorf("lookup %q: %w", path, err)
		}
		entries, err := object.UnmarshalTree(data)
		if err != nil {
			return object.TreeEntry{}, false, fmt.Errorf("lookup %q: tree %s: %w", path, current, err)
		}

		j := sort.Search(len(entries), func(k int) bool { return entries[k].Name >= part })
		if j == len(entries) || entries[j].Name != part {
			return object.TreeEntry{}, false, nil
		}
		entry := entries[j]

		if i == len(parts)-1 {
			return entry, true, nil
		}
		if !entry.IsTree() {
			return object.TreeEntry{}, false, nil
		}
		current = entry.Hash
	}
	return object.TreeEntry{}, false, nil
}
