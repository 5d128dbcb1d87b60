package main

import (
	"fmt"
	"strings"

	"github.com/odvcencio/twig/pkg/object"
	"github.com/odvcencio/twig/pkg/repo"
	"github.com/odvcencio/twig/pkg/tree"
)

// objectType names the shape of stored bytes for display. Objects carry no
// type header, so commits are recognized by parsing and trees by
// object.Classify.
func objectType(data []byte) string {
	if _, err := object.UnmarshalCommit(data); err == nil {
		return "commit"
	}
	return string(object.Classify(data))
}

// resolveRev maps "HEAD" to the commit it points at and parses anything else
// as a full object hash.
func resolveRev(r *repo.Repo, arg string) (object.Hash, error) {
	arg = strings.TrimSpace(arg)
	if arg != "HEAD" {
		return object.ParseHash(arg)
	}
	head, err := r.Head()
	if err != nil {
		return "", err
	}
	if head == "" {
		return "", fmt.Errorf("HEAD does not point at a commit yet")
	}
	return head, nil
}

// resolveTreeish maps "HEAD", a commit hash or a tree hash to a tree hash.
func resolveTreeish(r *repo.Repo, arg string) (object.Hash, error) {
	h, err := resolveRev(r, arg)
	if err != nil {
		return "", err
	}
	data, err := r.Store.Get(h)
	if err != nil {
		return "", err
	}
	if c, err := object.UnmarshalCommit(data); err == nil {
		return c.TreeHash, nil
	}
	if object.Classify(data) != object.KindTree {
		return "", fmt.Errorf("object %s is not a tree", h)
	}
	return h, nil
}

// resolveObject maps "<tree-ish>:<path>" to the hash of the entry at path,
// and anything else, "HEAD" included, to a plain object hash.
func resolveObject(r *repo.Repo, arg string) (object.Hash, error) {
	treeish, path, ok := strings.Cut(arg, ":")
	if !ok {
		return resolveRev(r, arg)
	}
	root, err := resolveTreeish(r, treeish)
	if err != nil {
		return "", err
	}
	if path == "" {
		return root, nil
	}
	e, found, err := tree.Lookup(r.Store, root, path)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("path %q does not exist in %s", path, treeish)
	}
	return e.Hash, nil
}
