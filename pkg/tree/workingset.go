package tree

import (
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"

	"github.com/odvcencio/twig/pkg/index"
	"github.com/odvcencio/twig/pkg/object"
)

// item is one element of the working set: a staged file still waiting for
// its directory to be built, or a directory already collapsed into a tree.
type item struct {
	kind object.Kind
	hash object.Hash
}

// workingSet holds the in-progress build, keyed by full path and kept in
// path order. Every key is unique, so a file and a directory can never share
// a path.
type workingSet struct {
	items *treemap.Map
}

func newWorkingSet() *workingSet {
	return &workingSet{items: treemap.NewWithStringComparator()}
}

// load fills the set with one blob item per entry.
func (ws *workingSet) load(entries []index.Entry) error {
	for i, e := range entries {
		p := index.Normalize(e.Path)
		if err := index.ValidatePath(p); err != nil {
			return fmt.Errorf("%w: entry %d: %v", index.ErrCorruptIndex, i+1, err)
		}
		if !e.Hash.Valid() {
			return fmt.Errorf("%w: entry %d: bad hash %q", index.ErrCorruptIndex, i+1, e.Hash)
		}
		if _, dup := ws.items.Get(p); dup {
			return fmt.Errorf("%w: entry %d: duplicate path %q", index.ErrCorruptIndex, i+1, p)
		}
		ws.items.Put(p, item{kind: object.KindBlob, hash: e.Hash})
	}

	// A staged file may not also be the ancestor directory of another file.
	it := ws.items.Iterator()
	for it.Next() {
		p := it.Key().(string)
		for dir := index.Parent(p); dir != ""; dir = index.Parent(dir) {
			if _, isFile := ws.items.Get(dir); isFile {
				return fmt.Errorf("%w: %q is staged as a file and as the directory of %q", ErrPathConflict, dir, p)
			}
		}
	}
	return nil
}

func (ws *workingSet) size() int {
	return ws.items.Size()
}

// root returns the root tree hash once the set has collapsed to a single
// tree at the empty path.
func (ws *workingSet) root() (object.Hash, bool) {
	if ws.items.Size() != 1 {
		return "", false
	}
	v, found := ws.items.Get("")
	if !found {
		return "", false
	}
	it := v.(item)
	return it.hash, it.kind == object.KindTree
}

// nextDir picks the directory to collapse next: the deepest resolvable
// non-root parent directory, ties broken by path order. A directory is
// resolvable when no item sits more than one level beneath it, meaning every
// subdirectory has already been collapsed into a tree item. It returns false
// when only root-level items remain.
func (ws *workingSet) nextDir() (string, bool) {
	candidates := make(map[string]struct{})
	blocked := make(map[string]struct{})

	it := ws.items.Iterator()
	for it.Next() {
		parent := index.Parent(it.Key().(string))
		if parent == "" {
			continue
		}
		candidates[parent] = struct{}{}
		for anc := index.Parent(parent); anc != ""; anc = index.Parent(anc) {
			blocked[anc] = struct{}{}
		}
	}

	best, bestDepth := "", -1
	for dir := range candidates {
		if _, ok := blocked[dir]; ok {
			continue
		}
		d := index.Depth(dir)
		if d > bestDepth || (d == bestDepth && dir < best) {
			best, bestDepth = dir, d
		}
	}
	return best, bestDepth > 0
}

// children returns the tree entries for the direct children of dir, sorted
// by name, along with the item paths they were taken from.
func (ws *workingSet) children(dir string) ([]object.TreeEntry, []string) {
	var entries []object.TreeEntry
	var paths []string

	it := ws.items.Iterator()
	for it.Next() {
		p := it.Key().(string)
		if p == "" || index.Parent(p) != dir {
			continue
		}
		v := it.Value().(item)
		entries = append(entries, object.TreeEntry{
			Kind: v.kind,
			Name: index.Base(p),
			Hash: v.hash,
		})
		paths = append(paths, p)
	}
	sortEntries(entries)
	return entries, paths
}

// collapse replaces the consumed items with a single tree item for dir.
func (ws *workingSet) collapse(dir string, consumed []string, h object.Hash) {
	for _, p := range consumed {
		ws.items.Remove(p)
	}
	ws.items.Put(dir, item{kind: object.KindTree, hash: h})
}
