package repo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog/log"

	"github.com/odvcencio/twig/pkg/index"
)

var (
	// ErrPathNotFound is returned by Add when a file does not exist.
	ErrPathNotFound = index.ErrPathNotFound
	// ErrInvalidPath is returned by Add for directories and paths outside
	// the working tree.
	ErrInvalidPath = index.ErrInvalidPath
)

// Add stages the given file paths. Paths are absolute or relative to the
// repository root. All paths are checked before anything is written, so a
// missing file or a directory leaves the index untouched. For each file:
//  1. The raw content is written as a blob to the object store.
//  2. The index entry for the path is created or updated; re-adding
//     unchanged content leaves the index file byte-for-byte identical.
//
// Add returns the repo-relative paths whose index entry changed.
func (r *Repo) Add(paths []string) ([]string, error) {
	rels := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := r.repoRelPath(p)
		if err != nil {
			return nil, fmt.Errorf("add: %w", err)
		}
		info, err := r.Worktree.Stat(rel)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("add: %q: %w", rel, ErrPathNotFound)
			}
			return nil, fmt.Errorf("add: stat %q: %w", rel, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("add: %q: %w: is a directory", rel, ErrInvalidPath)
		}
		rels = append(rels, rel)
	}

	var changed []string
	for _, rel := range rels {
		content, err := r.readWorktreeFile(rel)
		if err != nil {
			return changed, fmt.Errorf("add: read %q: %w", rel, err)
		}
		blobHash, err := r.Store.Put(content)
		if err != nil {
			return changed, fmt.Errorf("add: write blob %q: %w", rel, err)
		}
		ok, err := r.Index.Stage(rel, blobHash)
		if err != nil {
			return changed, fmt.Errorf("add: %w", err)
		}
		if ok {
			changed = append(changed, rel)
		}
		log.Debug().Str("path", rel).Str("blob", string(blobHash)).Bool("changed", ok).Msg("add")
	}
	return changed, nil
}

// AddDir stages every regular file below each of dirs, which are absolute or
// relative to the repository root; "" or "." names the root itself. Paths
// matched by .twigignore are skipped, as are file names the index cannot
// hold. The files are then staged with Add, so the same no-op and ordering
// rules apply. Files already staged but gone from disk are left alone.
func (r *Repo) AddDir(dirs []string) ([]string, error) {
	ic, err := NewIgnoreChecker(r.Worktree)
	if err != nil {
		return nil, fmt.Errorf("add: %w", err)
	}

	var files []string
	seen := make(map[string]struct{})
	for _, d := range dirs {
		root, err := r.repoRelDir(d)
		if err != nil {
			return nil, fmt.Errorf("add: %w", err)
		}
		if root != "" {
			info, err := r.Worktree.Stat(root)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return nil, fmt.Errorf("add: %q: %w", root, ErrPathNotFound)
				}
				return nil, fmt.Errorf("add: stat %q: %w", root, err)
			}
			if !info.IsDir() {
				return nil, fmt.Errorf("add: %q: %w: not a directory", root, ErrInvalidPath)
			}
		}

		err = util.Walk(r.Worktree, root, func(p string, info os.FileInfo, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			rel := filepath.ToSlash(p)
			if rel == "" || rel == "." {
				return nil
			}
			if ic.IsIgnored(rel) {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !info.Mode().IsRegular() {
				return nil
			}
			if err := index.ValidatePath(rel); err != nil {
				log.Warn().Str("path", rel).Err(err).Msg("add: skipped")
				return nil
			}
			if _, dup := seen[rel]; !dup {
				seen[rel] = struct{}{}
				files = append(files, rel)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("add: walk %q: %w", root, err)
		}
	}
	if len(files) == 0 {
		return nil, nil
	}
	return r.Add(files)
}

// repoRelDir is repoRelPath that also accepts the repository root, which it
// returns as "".
func (r *Repo) repoRelDir(p string) (string, error) {
	if filepath.IsAbs(p) && filepath.Clean(p) == filepath.Clean(r.RootDir) {
		return "", nil
	}
	if index.Normalize(strings.TrimSuffix(p, "/")) == "" {
		return "", nil
	}
	return r.repoRelPath(p)
}

// Remove unstages the given paths. Unless cached is set the files are also
// deleted from the working tree.
func (r *Repo) Remove(paths []string, cached bool) error {
	for _, p := range paths {
		rel, err := r.repoRelPath(p)
		if err != nil {
			return fmt.Errorf("rm: %w", err)
		}
		found, err := r.Index.Remove(rel)
		if err != nil {
			return fmt.Errorf("rm: %w", err)
		}
		if !found {
			return fmt.Errorf("rm: %q is not staged", rel)
		}
		if cached {
			continue
		}
		if err := r.Worktree.Remove(rel); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("rm: %w", err)
		}
	}
	return nil
}

func (r *Repo) readWorktreeFile(rel string) ([]byte, error) {
	f, err := r.Worktree.Open(rel)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// repoRelPath converts an absolute path, or one relative to the repository
// root, into a normalized repo-relative path. Paths that leave the working
// tree, name its root, or point into .twig/ are rejected.
func (r *Repo) repoRelPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(r.RootDir, p)
		if err != nil {
			return "", fmt.Errorf("%w: cannot make %q relative to %q", ErrInvalidPath, p, r.RootDir)
		}
		p = filepath.ToSlash(rel)
	}

	rel := index.Normalize(p)
	if rel == "" {
		return "", fmt.Errorf("%w: %q is the repository root", ErrInvalidPath, p)
	}
	rel = strings.TrimSuffix(rel, "/")
	if err := index.ValidatePath(rel); err != nil {
		return "", err
	}
	if rel == DirName || strings.HasPrefix(rel, DirName+"/") {
		return "", fmt.Errorf("%w: %q is inside %s", ErrInvalidPath, rel, DirName)
	}
	return rel, nil
}
