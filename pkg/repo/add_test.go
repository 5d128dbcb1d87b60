package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/twig/pkg/object"
)

// Test 1: Add stores the blob and stages its hash.
func TestAdd_StagesBlob(t *testing.T) {
	r, dir := initRepo(t)
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("alpha"))

	changed, err := r.Add([]string{"a.txt"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(changed) != 1 || changed[0] != "a.txt" {
		t.Fatalf("changed = %v", changed)
	}

	e, ok, err := r.Index.Lookup("a.txt")
	if err != nil || !ok {
		t.Fatalf("Lookup = %v, %v", ok, err)
	}
	if e.Hash != object.HashBytes([]byte("alpha")) {
		t.Fatalf("staged hash %s, want hash of content", e.Hash)
	}
	blob, err := r.Store.Get(e.Hash)
	if err != nil {
		t.Fatalf("Get blob: %v", err)
	}
	if string(blob) != "alpha" {
		t.Fatalf("blob = %q", blob)
	}
}

// Test 2: Re-adding unchanged content leaves the index byte-for-byte identical.
func TestAdd_UnchangedIsNoOp(t *testing.T) {
	r, dir := initRepo(t)
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("alpha"))
	writeFile(t, filepath.Join(dir, "b.txt"), []byte("beta"))
	if _, err := r.Add([]string{"a.txt", "b.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	indexPath := filepath.Join(dir, ".twig", "index")
	before, err := os.ReadFile(indexPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	changed, err := r.Add([]string{"a.txt"})
	if err != nil {
		t.Fatalf("Add again: %v", err)
	}
	if len(changed) != 0 {
		t.Fatalf("changed = %v, want none", changed)
	}
	after, err := os.ReadFile(indexPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("index rewritten:\nbefore %q\n after %q", before, after)
	}
}

// Test 3: Changing a file and re-adding moves its entry to the end.
func TestAdd_UpdateMovesToEnd(t *testing.T) {
	r, dir := initRepo(t)
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("alpha"))
	writeFile(t, filepath.Join(dir, "b.txt"), []byte("beta"))
	if _, err := r.Add([]string{"a.txt", "b.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	writeFile(t, filepath.Join(dir, "a.txt"), []byte("alpha v2"))
	if _, err := r.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	entries, err := r.Index.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(entries) != 2 || entries[0].Path != "b.txt" || entries[1].Path != "a.txt" {
		t.Fatalf("entries = %v, want b.txt then a.txt", entries)
	}
	if entries[1].Hash != object.HashBytes([]byte("alpha v2")) {
		t.Fatal("updated entry has stale hash")
	}
}

// Test 4: A missing file fails the whole call without touching the index.
func TestAdd_MissingFile(t *testing.T) {
	r, dir := initRepo(t)
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("alpha"))

	_, err := r.Add([]string{"a.txt", "nope.txt"})
	if !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("Add error = %v, want ErrPathNotFound", err)
	}
	entries, err := r.Index.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("index modified: %v", entries)
	}
}

// Test 5: Directories and paths outside the tree are invalid.
func TestAdd_InvalidPaths(t *testing.T) {
	r, dir := initRepo(t)
	writeFile(t, filepath.Join(dir, "sub", "f.txt"), []byte("f"))

	for _, p := range []string{"sub", ".", "../outside", ".twig/HEAD", filepath.Join(filepath.Dir(dir), "elsewhere")} {
		if _, err := r.Add([]string{p}); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Add(%q) = %v, want ErrInvalidPath", p, err)
		}
	}
}

// Test 6: Absolute paths and ./ prefixes resolve to the same entry.
func TestAdd_PathForms(t *testing.T) {
	r, dir := initRepo(t)
	writeFile(t, filepath.Join(dir, "sub", "f.txt"), []byte("f"))

	if _, err := r.Add([]string{filepath.Join(dir, "sub", "f.txt")}); err != nil {
		t.Fatalf("Add absolute: %v", err)
	}
	changed, err := r.Add([]string{"./sub/f.txt"})
	if err != nil {
		t.Fatalf("Add relative: %v", err)
	}
	if len(changed) != 0 {
		t.Fatalf("same file staged twice: %v", changed)
	}
	if _, ok, _ := r.Index.Lookup("sub/f.txt"); !ok {
		t.Fatal("sub/f.txt not staged")
	}
}

// Test 7: Remove unstages and deletes, or only unstages with cached.
func TestRemove(t *testing.T) {
	r, dir := initRepo(t)
	writeFile(t, filepath.Join(dir, "keep.txt"), []byte("k"))
	writeFile(t, filepath.Join(dir, "gone.txt"), []byte("g"))
	if _, err := r.Add([]string{"keep.txt", "gone.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := r.Remove([]string{"keep.txt"}, true); err != nil {
		t.Fatalf("Remove cached: %v", err)
	}
	assertFile(t, filepath.Join(dir, "keep.txt"))

	if err := r.Remove([]string{"gone.txt"}, false); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gone.txt")); !os.IsNotExist(err) {
		t.Fatalf("gone.txt still on disk: %v", err)
	}

	entries, err := r.Index.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %v, want none", entries)
	}

	if err := r.Remove([]string{"keep.txt"}, true); err == nil {
		t.Fatal("Remove of unstaged path succeeded")
	}
}

// Test 8: A file name with a line break is rejected and the index is left
// readable and unchanged.
func TestAdd_LineBreakInName(t *testing.T) {
	r, dir := initRepo(t)
	writeFile(t, filepath.Join(dir, "ok.txt"), []byte("ok"))
	if _, err := r.Add([]string{"ok.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	indexPath := filepath.Join(dir, DirName, "index")
	before, err := os.ReadFile(indexPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	for _, name := range []string{"a\nb", "c\r"} {
		writeFile(t, filepath.Join(dir, name), []byte("x"))
		if _, err := r.Add([]string{name}); !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("Add(%q) = %v, want ErrInvalidPath", name, err)
		}
	}

	after, err := os.ReadFile(indexPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(after) != string(before) {
		t.Fatalf("index changed: %q -> %q", before, after)
	}
	if _, err := r.WriteTree(); err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
}

// Test 9: AddDir stages every file below a directory, skipping ignored
// paths, and is a no-op when run again.
func TestAddDir_StagesTree(t *testing.T) {
	r, dir := initRepo(t)
	writeFile(t, filepath.Join(dir, IgnoreFile), []byte("*.log\ntmp/\n"))
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("alpha"))
	writeFile(t, filepath.Join(dir, "sub", "c.txt"), []byte("gamma"))
	writeFile(t, filepath.Join(dir, "sub", "deep", "d.md"), []byte("delta"))
	writeFile(t, filepath.Join(dir, "sub", "trace.log"), []byte("log"))
	writeFile(t, filepath.Join(dir, "tmp", "scratch"), []byte("s"))

	changed, err := r.AddDir([]string{"sub"})
	if err != nil {
		t.Fatalf("AddDir(sub): %v", err)
	}
	if len(changed) != 2 || changed[0] != "sub/c.txt" || changed[1] != "sub/deep/d.md" {
		t.Fatalf("AddDir(sub) changed = %v", changed)
	}

	if _, err := r.AddDir([]string{"."}); err != nil {
		t.Fatalf("AddDir(.): %v", err)
	}
	entries, err := r.Index.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	got := map[string]object.Hash{}
	for _, e := range entries {
		got[e.Path] = e.Hash
	}
	want := map[string]string{
		IgnoreFile:      "*.log\ntmp/\n",
		"a.txt":         "alpha",
		"sub/c.txt":     "gamma",
		"sub/deep/d.md": "delta",
	}
	if len(got) != len(want) {
		t.Fatalf("staged %v, want %d entries", got, len(want))
	}
	for p, content := range want {
		if got[p] != object.HashBytes([]byte(content)) {
			t.Errorf("%s staged as %q", p, got[p])
		}
	}

	again, err := r.AddDir([]string{dir})
	if err != nil {
		t.Fatalf("AddDir(root): %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second AddDir changed %v", again)
	}
}

// Test 10: AddDir rejects files and missing directories without staging.
func TestAddDir_InvalidTargets(t *testing.T) {
	r, dir := initRepo(t)
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("alpha"))

	if _, err := r.AddDir([]string{"a.txt"}); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("AddDir(file) = %v, want ErrInvalidPath", err)
	}
	if _, err := r.AddDir([]string{"missing"}); !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("AddDir(missing) = %v, want ErrPathNotFound", err)
	}
	if _, err := r.AddDir([]string{"../outside"}); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("AddDir(../outside) = %v, want ErrInvalidPath", err)
	}
	entries, err := r.Index.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("index modified: %v", entries)
	}
}
