package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5/util"

	"github.com/odvcencio/twig/pkg/index"
	"github.com/odvcencio/twig/pkg/object"
)

// FileStatus represents the state of a file in the working tree or index.
type FileStatus int

const (
	StatusClean     FileStatus = iota // file matches between compared areas
	StatusNew                         // staged, not in the HEAD tree
	StatusModified                    // staged with a different hash than HEAD
	StatusDeleted                     // in HEAD but not staged, or staged but gone from disk
	StatusUntracked                   // in the working tree but not staged
	StatusDirty                       // staged but the working copy differs
)

func (s FileStatus) String() string {
	switch s {
	case StatusClean:
		return "clean"
	case StatusNew:
		return "new"
	case StatusModified:
		return "modified"
	case StatusDeleted:
		return "deleted"
	case StatusUntracked:
		return "untracked"
	case StatusDirty:
		return "dirty"
	default:
		return fmt.Sprintf("FileStatus(%d)", int(s))
	}
}

// StatusEntry records the status of a single file.
type StatusEntry struct {
	Path        string     // repo-relative path
	IndexStatus FileStatus // index vs HEAD tree
	WorkStatus  FileStatus // working tree vs index
}

// Status compares the working tree, the index and the HEAD commit's tree.
//
//  1. Read the index and flatten the HEAD tree (empty before the first commit).
//  2. Walk the working tree, skipping .twig/ and ignored paths.
//  3. Hash each working file and compare against its index entry.
//  4. Compare index entries against the HEAD tree.
//
// Entries that are clean on both sides are omitted. The result is sorted by
// path.
func (r *Repo) Status() ([]StatusEntry, error) {
	staged, err := r.Index.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	stagedByPath := make(map[string]object.Hash, len(staged))
	stagedDirs := make(map[string]struct{})
	for _, e := range staged {
		stagedByPath[e.Path] = e.Hash
		for dir := index.Parent(e.Path); dir != ""; dir = index.Parent(dir) {
			stagedDirs[dir] = struct{}{}
		}
	}

	headFiles, err := r.headTreeFiles()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	ic, err := NewIgnoreChecker(r.Worktree)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	result := make(map[string]*StatusEntry)
	entry := func(p string) *StatusEntry {
		e, ok := result[p]
		if !ok {
			e = &StatusEntry{Path: p}
			result[p] = e
		}
		return e
	}

	onDisk := make(map[string]struct{})
	err = util.Walk(r.Worktree, "", func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel := filepath.ToSlash(p)
		if rel == "" || rel == "." {
			return nil
		}
		if rel == DirName {
			return filepath.SkipDir
		}
		// Ignore rules only hide untracked paths. A staged file stays
		// visible, and so does any directory holding one.
		if _, tracked := stagedByPath[rel]; !tracked && ic.IsIgnored(rel) {
			if !info.IsDir() {
				return nil
			}
			if _, holdsStaged := stagedDirs[rel]; !holdsStaged {
				return filepath.SkipDir
			}
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}
		onDisk[rel] = struct{}{}

		stagedHash, ok := stagedByPath[rel]
		if !ok {
			e := entry(rel)
			e.IndexStatus = StatusUntracked
			e.WorkStatus = StatusUntracked
			return nil
		}
		content, err := r.readWorktreeFile(rel)
		if err != nil {
			return fmt.Errorf("read %q: %w", rel, err)
		}
		if object.HashBytes(content) != stagedHash {
			entry(rel).WorkStatus = StatusDirty
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("status: walk: %w", err)
	}

	for _, e := range staged {
		if _, ok := onDisk[e.Path]; !ok {
			entry(e.Path).WorkStatus = StatusDeleted
		}
		headHash, inHead := headFiles[e.Path]
		switch {
		case !inHead:
			entry(e.Path).IndexStatus = StatusNew
		case headHash != e.Hash:
			entry(e.Path).IndexStatus = StatusModified
		}
	}
	for p := range headFiles {
		if _, ok := stagedByPath[p]; !ok {
			entry(p).IndexStatus = StatusDeleted
		}
	}

	entries := make([]StatusEntry, 0, len(result))
	for _, e := range result {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}

// headTreeFiles flattens the HEAD commit's tree into path -> blob hash.
// Before the first commit the map is empty.
func (r *Repo) headTreeFiles() (map[string]object.Hash, error) {
	out := make(map[string]object.Hash)
	head, err := r.Head()
	if err != nil || head == "" {
		return out, err
	}
	c, err := r.Store.GetCommit(head)
	if err != nil {
		return nil, fmt.Errorf("read HEAD commit: %w", err)
	}
	files, err := r.FlattenTree(c.TreeHash)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		out[f.Path] = f.Hash
	}
	return out, nil
}
