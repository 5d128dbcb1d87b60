package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/odvcencio/twig/pkg/object"
)

// ErrNothingStaged is returned by Commit when the index is empty.
var ErrNothingStaged = errors.New("nothing staged")

// Commit creates a new commit from the current staging area.
//
//  1. Build the tree from the staging index
//  2. Read HEAD to get the parent commit hash (if any)
//  3. Create a CommitObj with tree hash, parent, author, timestamp, message
//  4. Write the commit to the store
//  5. Move HEAD to the new commit
func (r *Repo) Commit(message, author string) (object.Hash, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("commit: message is required")
	}
	if author == "" {
		author = r.Config.User.Name
	}
	if author == "" {
		return "", fmt.Errorf("commit: author is required")
	}

	entries, err := r.Index.Snapshot()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("commit: %w", ErrNothingStaged)
	}

	treeHash, err := r.WriteTree()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	parent, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	var parents []object.Hash
	if parent != "" {
		parents = append(parents, parent)
	}

	commitHash, err := r.Store.PutCommit(&object.CommitObj{
		TreeHash:  treeHash,
		Parents:   parents,
		Author:    author,
		Timestamp: r.now().Unix(),
		Message:   message,
	})
	if err != nil {
		return "", fmt.Errorf("commit: write commit: %w", err)
	}

	if err := r.UpdateHead(commitHash, parent, "commit: "+FirstLine(message)); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	log.Debug().
		Str("commit", string(commitHash)).
		Str("tree", string(treeHash)).
		Msg("commit: recorded")
	return commitHash, nil
}

// FirstLine returns the summary line of a commit message.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// LogEntry is one commit in a history walk.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// Log walks the commit history starting from the given hash, following
// first-parent links, returning up to limit commits newest first.
func (r *Repo) Log(start object.Hash, limit int) ([]LogEntry, error) {
	var out []LogEntry
	current := start

	for current != "" && len(out) < limit {
		c, err := r.Store.GetCommit(current)
		if err != nil {
			return nil, fmt.Errorf("log: read commit %s: %w", current, err)
		}
		out = append(out, LogEntry{Hash: current, Commit: c})

		if len(c.Parents) == 0 {
			break
		}
		current = c.Parents[0]
	}

	return out, nil
}
