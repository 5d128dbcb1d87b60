package lockfile

import (
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

func TestCommitReplacesTarget(t *testing.T) {
	fs := memfs.New()
	if err := util.WriteFile(fs, "HEAD", []byte("old"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	l, err := Acquire(fs, "HEAD")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := l.Commit([]byte("new")); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got, err := util.ReadFile(fs, "HEAD")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "new" {
		t.Fatalf("HEAD = %q, want new", got)
	}
	if _, err := fs.Stat("HEAD.lock"); err == nil {
		t.Fatal("HEAD.lock left behind")
	}
}

func TestReleaseLeavesTarget(t *testing.T) {
	fs := memfs.New()
	if err := util.WriteFile(fs, "index", []byte("keep"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	l, err := Acquire(fs, "index")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	l.Release()

	got, err := util.ReadFile(fs, "index")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "keep" {
		t.Fatalf("index = %q, want keep", got)
	}

	// The lock can be taken again once released.
	l, err = Acquire(fs, "index")
	if err != nil {
		t.Fatalf("Acquire after Release: %v", err)
	}
	l.Release()
}

func TestAcquireTimesOutWhileHeld(t *testing.T) {
	fs := memfs.New()
	if err := util.WriteFile(fs, "index.lock", nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Acquire(fs, "index"); !errors.Is(err, ErrLocked) {
		t.Fatalf("Acquire on held lock = %v, want ErrLocked", err)
	}
}
