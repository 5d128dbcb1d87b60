package repo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog/log"
)

// Init creates a twig repository at path, or completes a partial one. It
// creates .twig/ with objects/, an empty index, an empty HEAD and a default
// config.toml, leaving anything that already exists untouched, so running it
// twice is harmless.
func Init(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("init: mkdir %s: %w", abs, err)
	}
	return InitWorktree(abs, osfs.New(abs))
}

// InitWorktree is Init for an arbitrary working tree filesystem. rootDir is
// recorded as the repository's root for display and path resolution.
func InitWorktree(rootDir string, worktree billy.Filesystem) (*Repo, error) {
	if info, err := worktree.Stat(DirName); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("init: %s exists and is not a directory", DirName)
	}

	objectsDir := worktree.Join(DirName, "objects")
	if err := worktree.MkdirAll(objectsDir, 0o755); err != nil {
		return nil, fmt.Errorf("init: mkdir %s: %w", objectsDir, err)
	}

	var cfg bytes.Buffer
	if err := toml.NewEncoder(&cfg).Encode(DefaultConfig()); err != nil {
		return nil, fmt.Errorf("init: encode config: %w", err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{indexFile, nil},
		{headFile, nil},
		{configFile, cfg.Bytes()},
	}
	for _, f := range files {
		p := worktree.Join(DirName, f.name)
		created, err := ensureFile(worktree, p, f.data)
		if err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
		if created {
			log.Debug().Str("file", p).Msg("init: created")
		}
	}

	r, err := newRepo(rootDir, worktree)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	return r, nil
}

// ensureFile writes data to p unless p already exists.
func ensureFile(fs billy.Filesystem, p string, data []byte) (bool, error) {
	_, err := fs.Stat(p)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", p, err)
	}
	if err := util.WriteFile(fs, p, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", p, err)
	}
	return true, nil
}

// Open searches upward from path for a .twig/ directory and opens the
// repository. Returns an error if no .twig/ directory is found.
func Open(path string) (*Repo, error) {
	// Resolve to absolute path for consistent traversal.
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		info, err := os.Stat(filepath.Join(cur, DirName))
		if err == nil && info.IsDir() {
			r, err := newRepo(cur, osfs.New(cur))
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			return r, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			// Reached filesystem root without finding .twig/.
			return nil, fmt.Errorf("open: not a twig repository (or any parent up to /)")
		}
		cur = parent
	}
}
