package repo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/odvcencio/twig/internal/lockfile"
	"github.com/odvcencio/twig/pkg/object"
)

// ErrHeadCASMismatch is returned when HEAD moved between reading the parent
// and writing the new commit.
var ErrHeadCASMismatch = errors.New("HEAD compare-and-swap mismatch")

// Head returns the commit hash recorded in .twig/HEAD, or "" before the
// first commit.
func (r *Repo) Head() (object.Hash, error) {
	f, err := r.fs.Open(headFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("head: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", nil
	}
	h, err := object.ParseHash(content)
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	return h, nil
}

// UpdateHead points HEAD at h under HEAD.lock, failing with
// ErrHeadCASMismatch unless HEAD still holds expectedOld. The move is
// recorded in the reflog with reason.
func (r *Repo) UpdateHead(h, expectedOld object.Hash, reason string) error {
	lock, err := lockfile.Acquire(r.fs, headFile)
	if err != nil {
		return fmt.Errorf("update HEAD: lock: %w", err)
	}

	oldHash, err := r.Head()
	if err != nil {
		lock.Release()
		return fmt.Errorf("update HEAD: %w", err)
	}
	if oldHash != expectedOld {
		lock.Release()
		return fmt.Errorf("update HEAD: %w (expected %q, found %q)", ErrHeadCASMismatch, expectedOld, oldHash)
	}

	if err := lock.Commit([]byte(string(h) + "\n")); err != nil {
		return fmt.Errorf("update HEAD: %w", err)
	}
	if err := r.appendReflog(oldHash, h, reason); err != nil {
		return fmt.Errorf("update HEAD: %w", err)
	}
	return nil
}
