// Package tree turns a flat staging snapshot into a hierarchy of stored
// tree objects and walks stored trees back out.
package tree

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/odvcencio/twig/pkg/index"
	"github.com/odvcencio/twig/pkg/object"
)

// ErrPathConflict is returned when one staged path is also the ancestor
// directory of another.
var ErrPathConflict = errors.New("file/directory path conflict")

// ObjectWriter is the slice of the object store a build needs.
type ObjectWriter interface {
	Put(data []byte) (object.Hash, error)
	Has(h object.Hash) bool
}

// Builder builds tree objects from staging snapshots.
type Builder struct {
	store ObjectWriter
}

// NewBuilder returns a Builder that writes trees to store.
func NewBuilder(store ObjectWriter) *Builder {
	return &Builder{store: store}
}

// Build stores one tree object per directory implied by entries and returns
// the root tree hash. The result depends only on the set of (path, hash)
// pairs, not on their order.
//
// Directories are collapsed bottom-up: each round picks the deepest
// directory whose subdirectories are all built, stores its sorted entry
// list, and replaces its children with a single tree item. When only
// root-level items remain they become the root tree.
//
// Every blob hash must already be in the store. Trees stored before a
// failure stay in the store; a retried build reuses them.
func (b *Builder) Build(entries []index.Entry) (object.Hash, error) {
	ws := newWorkingSet()
	if err := ws.load(entries); err != nil {
		return "", fmt.Errorf("build tree: %w", err)
	}
	for _, e := range entries {
		if !b.store.Has(e.Hash) {
			return "", fmt.Errorf("build tree: blob %s for %q: %w", e.Hash, e.Path, object.ErrObjectNotFound)
		}
	}

	if ws.size() == 0 {
		h, err := b.store.Put(nil)
		if err != nil {
			return "", fmt.Errorf("build tree: write empty tree: %w", err)
		}
		return h, nil
	}

	for {
		if h, ok := ws.root(); ok {
			return h, nil
		}

		dir, ok := ws.nextDir()
		if !ok {
			dir = ""
		}
		if err := b.materialize(ws, dir); err != nil {
			return "", err
		}
	}
}

// materialize stores the tree for dir and collapses it in ws.
func (b *Builder) materialize(ws *workingSet, dir string) error {
	entries, consumed := ws.children(dir)
	h, err := b.store.Put(object.MarshalTree(entries))
	if err != nil {
		return fmt.Errorf("build tree: write tree %q: %w", dir, err)
	}
	ws.collapse(dir, consumed, h)

	log.Debug().
		Str("dir", dir).
		Str("hash", string(h)).
		Int("entries", len(entries)).
		Msg("collapsed directory")
	return nil
}

func sortEntries(entries []object.TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
}
