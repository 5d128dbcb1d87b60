package repo

import (
	"os"
	"path/filepath"
	"testing"
)

func statusOf(t *testing.T, r *Repo, path string) (StatusEntry, bool) {
	t.Helper()
	entries, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	for _, e := range entries {
		if e.Path == path {
			return e, true
		}
	}
	return StatusEntry{}, false
}

// Test 1: A staged file before the first commit is new and clean on disk.
func TestStatus_StagedNew_WorkClean(t *testing.T) {
	r, dir := initRepo(t)
	writeFile(t, filepath.Join(dir, "main.go"), []byte("package main\n"))
	if _, err := r.Add([]string{"main.go"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	e, ok := statusOf(t, r, "main.go")
	if !ok {
		t.Fatal("Status missing entry for main.go")
	}
	if e.IndexStatus != StatusNew || e.WorkStatus != StatusClean {
		t.Fatalf("status = %s/%s, want new/clean", e.IndexStatus, e.WorkStatus)
	}
}

// Test 2: Unstaged files are untracked unless ignored; .twig never shows.
func TestStatus_UntrackedAndIgnored(t *testing.T) {
	r, dir := initRepo(t)
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("n"))
	writeFile(t, filepath.Join(dir, "debug.log"), []byte("l"))
	writeFile(t, filepath.Join(dir, IgnoreFile), []byte("*.log\n"))

	entries, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	seen := map[string]StatusEntry{}
	for _, e := range entries {
		seen[e.Path] = e
	}
	if e, ok := seen["notes.txt"]; !ok || e.WorkStatus != StatusUntracked {
		t.Fatalf("notes.txt status = %+v", e)
	}
	if _, ok := seen["debug.log"]; ok {
		t.Fatal("ignored debug.log reported")
	}
	for p := range seen {
		if p == ".twig" || filepath.Dir(p) == ".twig" {
			t.Fatalf(".twig content reported: %s", p)
		}
	}
}

// Test 3: After a commit, clean files drop out; edits and deletions show.
func TestStatus_AfterCommit(t *testing.T) {
	r, dir := initRepo(t)
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("a"))
	writeFile(t, filepath.Join(dir, "b.txt"), []byte("b"))
	writeFile(t, filepath.Join(dir, "c.txt"), []byte("c"))
	if _, err := r.Add([]string{"a.txt", "b.txt", "c.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := r.Commit("base", "tester"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if _, ok := statusOf(t, r, "a.txt"); ok {
		t.Fatal("clean a.txt reported after commit")
	}

	// a.txt: edited on disk only. b.txt: edited and staged. c.txt: unstaged.
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("a2"))
	writeFile(t, filepath.Join(dir, "b.txt"), []byte("b2"))
	if _, err := r.Add([]string{"b.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Remove([]string{"c.txt"}, false); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	a, _ := statusOf(t, r, "a.txt")
	if a.IndexStatus != StatusClean || a.WorkStatus != StatusDirty {
		t.Errorf("a.txt = %s/%s, want clean/dirty", a.IndexStatus, a.WorkStatus)
	}
	b, _ := statusOf(t, r, "b.txt")
	if b.IndexStatus != StatusModified || b.WorkStatus != StatusClean {
		t.Errorf("b.txt = %s/%s, want modified/clean", b.IndexStatus, b.WorkStatus)
	}
	c, _ := statusOf(t, r, "c.txt")
	if c.IndexStatus != StatusDeleted {
		t.Errorf("c.txt = %s/%s, want deleted in index", c.IndexStatus, c.WorkStatus)
	}
}

// Test 4: A staged file removed from disk is deleted in the working tree.
func TestStatus_WorktreeDeleted(t *testing.T) {
	r, dir := initRepo(t)
	writeFile(t, filepath.Join(dir, "gone.txt"), []byte("g"))
	if _, err := r.Add([]string{"gone.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, "gone.txt")); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	e, ok := statusOf(t, r, "gone.txt")
	if !ok || e.WorkStatus != StatusDeleted || e.IndexStatus != StatusNew {
		t.Fatalf("gone.txt = %+v", e)
	}
}

// Test 5: Ignore rules hide untracked files only; staged files matching a
// pattern, or sitting in an ignored directory, are still reported.
func TestStatus_StagedIgnoredFile(t *testing.T) {
	r, dir := initRepo(t)
	writeFile(t, filepath.Join(dir, IgnoreFile), []byte("*.log\nbuild/\n"))
	writeFile(t, filepath.Join(dir, "debug.log"), []byte("l"))
	writeFile(t, filepath.Join(dir, "build", "keep.bin"), []byte("k"))
	writeFile(t, filepath.Join(dir, "build", "scratch.bin"), []byte("s"))
	if _, err := r.Add([]string{"debug.log", "build/keep.bin"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	for _, p := range []string{"debug.log", "build/keep.bin"} {
		e, ok := statusOf(t, r, p)
		if !ok {
			t.Fatalf("Status missing entry for %s", p)
		}
		if e.IndexStatus != StatusNew || e.WorkStatus != StatusClean {
			t.Fatalf("%s status = %s/%s, want new/clean", p, e.IndexStatus, e.WorkStatus)
		}
	}
	if _, ok := statusOf(t, r, "build/scratch.bin"); ok {
		t.Fatal("ignored build/scratch.bin reported")
	}

	writeFile(t, filepath.Join(dir, "debug.log"), []byte("changed"))
	if e, _ := statusOf(t, r, "debug.log"); e.WorkStatus != StatusDirty {
		t.Fatalf("debug.log work status = %s, want dirty", e.WorkStatus)
	}
}
