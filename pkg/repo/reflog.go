package repo

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/odvcencio/twig/pkg/object"
)

// reflogFile records every HEAD move, one line per update, oldest first.
const reflogFile = "logs/HEAD"

// zeroHash stands in for "no commit" in reflog lines.
const zeroHash = object.Hash("0000000000000000000000000000000000000000")

// ReflogEntry is one HEAD move.
type ReflogEntry struct {
	OldHash   object.Hash // "" when HEAD had no commit
	NewHash   object.Hash
	Timestamp int64
	Reason    string
}

func (r *Repo) appendReflog(oldHash, newHash object.Hash, reason string) error {
	if strings.TrimSpace(reason) == "" {
		reason = "update"
	}
	reason = strings.ReplaceAll(reason, "\n", " ")

	old := oldHash
	if old == "" {
		old = zeroHash
	}
	line := fmt.Sprintf("%s %s %d %s\n", old, newHash, r.now().Unix(), reason)

	if err := r.fs.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("reflog mkdir: %w", err)
	}
	f, err := r.fs.OpenFile(reflogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reflog open: %w", err)
	}
	defer f.Close()

	if _, err := f.Write([]byte(line)); err != nil {
		return fmt.Errorf("reflog write: %w", err)
	}
	return nil
}

// ReadReflog returns HEAD moves newest first, at most limit of them when
// limit is positive. Malformed lines are skipped.
func (r *Repo) ReadReflog(limit int) ([]ReflogEntry, error) {
	f, err := r.fs.Open(reflogFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reflog: %w", err)
	}
	defer f.Close()

	var entries []ReflogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 4)
		if len(parts) < 4 {
			continue
		}
		ts, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			continue
		}
		old := object.Hash(parts[0])
		if old == zeroHash {
			old = ""
		}
		entries = append(entries, ReflogEntry{
			OldHash:   old,
			NewHash:   object.Hash(parts[1]),
			Timestamp: ts,
			Reason:    parts[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}

	// Return newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
