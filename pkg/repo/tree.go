package repo

import (
	"fmt"

	"github.com/odvcencio/twig/pkg/index"
	"github.com/odvcencio/twig/pkg/object"
	"github.com/odvcencio/twig/pkg/tree"
)

// WriteTree converts the staging index into stored tree objects and returns
// the root tree hash. Building twice without staging anything in between
// returns the same hash.
func (r *Repo) WriteTree() (object.Hash, error) {
	entries, err := r.Index.Snapshot()
	if err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}
	h, err := tree.NewBuilder(r.Store).Build(entries)
	if err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}
	return h, nil
}

// FlattenTree walks a tree object recursively, returning all file entries
// with their full paths (using forward slashes).
func (r *Repo) FlattenTree(h object.Hash) ([]index.Entry, error) {
	entries, err := tree.Flatten(r.Store, h)
	if err != nil {
		return nil, fmt.Errorf("flatten tree: %w", err)
	}
	return entries, nil
}
