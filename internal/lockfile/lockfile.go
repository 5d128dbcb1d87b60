// Package lockfile implements git-style "<name>.lock" files: an exclusively
// created sibling that receives the new content and is renamed over the
// target, so writers are serialized and readers see either the old file or
// the new one.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-billy/v5"
)

const (
	retryDelay = 5 * time.Millisecond
	waitLimit  = 2 * time.Second
)

// ErrLocked is returned when another writer holds the lock past the wait
// limit.
var ErrLocked = errors.New("lock is held by another writer")

// Lock is a held lockfile for a target path.
type Lock struct {
	fs     billy.Filesystem
	path   string
	target string
	f      billy.File
}

// Acquire creates "<target>.lock" exclusively, retrying until the wait limit.
func Acquire(fs billy.Filesystem, target string) (*Lock, error) {
	lockPath := target + ".lock"
	deadline := time.Now().Add(waitLimit)
	for {
		f, err := fs.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return &Lock{fs: fs, path: lockPath, target: target, f: f}, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("%w: timeout waiting for %q", ErrLocked, lockPath)
			}
			time.Sleep(retryDelay)
			continue
		}
		return nil, err
	}
}

// Commit writes data into the lockfile and renames it over the target. The
// lock is released either way.
func (l *Lock) Commit(data []byte) error {
	if _, err := l.f.Write(data); err != nil {
		l.Release()
		return fmt.Errorf("write: %w", err)
	}
	if err := l.f.Close(); err != nil {
		l.f = nil
		l.Release()
		return fmt.Errorf("close: %w", err)
	}
	l.f = nil
	if err := l.fs.Rename(l.path, l.target); err != nil {
		l.Release()
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Release drops the lock without touching the target.
func (l *Lock) Release() {
	if l.f != nil {
		_ = l.f.Close()
		l.f = nil
	}
	_ = l.fs.Remove(l.path)
}
