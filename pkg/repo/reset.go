package repo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/twig/pkg/index"
	"github.com/odvcencio/twig/pkg/object"
)

// Reset unstages paths by restoring index entries to their HEAD versions.
//
// Behavior:
//   - If a path exists in HEAD, its index entry is reset to HEAD's blob.
//   - If a path does not exist in HEAD, its index entry is removed.
//   - A directory path covers every file below it.
//   - If no paths are provided, the entire index is reset to HEAD.
//
// Reset does not modify the working tree.
func (r *Repo) Reset(paths []string) error {
	staged, err := r.Index.Snapshot()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	head, err := r.headTreeFiles()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	targets, err := r.resolveResetTargets(paths, staged, head)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	next := make([]index.Entry, 0, len(staged))
	done := make(map[string]struct{})
	for _, e := range staged {
		if _, ok := targets[e.Path]; !ok {
			next = append(next, e)
			continue
		}
		done[e.Path] = struct{}{}
		if h, ok := head[e.Path]; ok {
			next = append(next, index.Entry{Path: e.Path, Hash: h})
		}
	}
	// Targets only HEAD knows about come back after the surviving entries.
	for _, p := range sortedPathSet(targets) {
		if _, ok := done[p]; ok {
			continue
		}
		if h, ok := head[p]; ok {
			next = append(next, index.Entry{Path: p, Hash: h})
		}
	}

	if _, err := r.Index.Replace(next); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

func (r *Repo) resolveResetTargets(paths []string, staged []index.Entry, head map[string]object.Hash) (map[string]struct{}, error) {
	all := make(map[string]struct{}, len(staged)+len(head))
	for _, e := range staged {
		all[e.Path] = struct{}{}
	}
	for p := range head {
		all[p] = struct{}{}
	}

	if len(paths) == 0 {
		return all, nil
	}

	targets := make(map[string]struct{})
	for _, raw := range paths {
		rel, err := r.repoRelPath(raw)
		if err != nil {
			return nil, err
		}

		matched := false
		if _, ok := all[rel]; ok {
			targets[rel] = struct{}{}
			matched = true
		}
		prefix := rel + "/"
		for p := range all {
			if strings.HasPrefix(p, prefix) {
				targets[p] = struct{}{}
				matched = true
			}
		}

		if !matched {
			return nil, fmt.Errorf("path %q did not match staged or HEAD entries", raw)
		}
	}
	return targets, nil
}

func sortedPathSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
