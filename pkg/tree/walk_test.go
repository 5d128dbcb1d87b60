package tree

import (
	"errors"
	"strings"
	"testing"

	"github.com/odvcencio/twig/pkg/object"
)

func TestWalkPreOrder(t *testing.T) {
	s := newTestStore(t)
	root, err := NewBuilder(s).Build(stage(t, s, map[string]string{
		"b.txt":       "b",
		"a/x.txt":     "x",
		"a/deep/y.go": "y",
	}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var got []string
	err = Walk(s, root, func(path string, e object.TreeEntry) error {
		got = append(got, string(e.Kind)+":"+path)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := "tree:a,tree:a/deep,blob:a/deep/y.go,blob:a/x.txt,blob:b.txt"
	if strings.Join(got, ",") != want {
		t.Fatalf("walk order = %v, want %s", got, want)
	}
}

func TestWalkSkipDir(t *testing.T) {
	s := newTestStore(t)
	root, err := NewBuilder(s).Build(stage(t, s, map[string]string{
		"skip/inner": "i",
		"keep":       "k",
	}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var got []string
	err = Walk(s, root, func(path string, e object.TreeEntry) error {
		got = append(got, path)
		if e.IsTree() {
			return SkipDir
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if strings.Join(got, ",") != "keep,skip" {
		t.Fatalf("visited %v", got)
	}
}

func TestWalkStopsOnError(t *testing.T) {
	s := newTestStore(t)
	root, err := NewBuilder(s).Build(stage(t, s, map[string]string{"a": "1", "b": "2"}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	stop := errors.New("stop")
	calls := 0
	err = Walk(s, root, func(string, object.TreeEntry) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Fatalf("Walk = %v after %d calls", err, calls)
	}
}

func TestWalkNotATree(t *testing.T) {
	s := newTestStore(t)
	blob, err := s.Store.Put([]byte("just text"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	err = Walk(s, blob, func(string, object.TreeEntry) error { return nil })
	if !errors.Is(err, object.ErrSerialization) {
		t.Fatalf("Walk blob = %v, want ErrSerialization", err)
	}
}

func TestFlattenRebuildsSameRoot(t *testing.T) {
	s := newTestStore(t)
	files := map[string]string{
		"go.mod":                "module x",
		"cmd/x/main.go":         "package main",
		"pkg/a/a.go":            "package a",
		"pkg/a/a_test.go":       "package a",
		"pkg/b/nested/deep.txt": "deep",
	}
	root, err := NewBuilder(s).Build(stage(t, s, files))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	flat, err := Flatten(s, root)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(flat) != len(files) {
		t.Fatalf("Flatten returned %d entries, want %d", len(flat), len(files))
	}
	for _, e := range flat {
		content, ok := files[e.Path]
		if !ok {
			t.Fatalf("unexpected path %q", e.Path)
		}
		if e.Hash != object.HashBytes([]byte(content)) {
			t.Fatalf("%s: hash %s does not match content", e.Path, e.Hash)
		}
	}

	again, err := NewBuilder(s).Build(flat)
	if err != nil {
		t.Fatalf("Build flattened: %v", err)
	}
	if again != root {
		t.Fatalf("rebuilt root %s, want %s", again, root)
	}
}

func TestFlattenEmptyTree(t *testing.T) {
	s := newTestStore(t)
	root, err := NewBuilder(s).Build(nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	flat, err := Flatten(s, root)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(flat) != 0 {
		t.Fatalf("Flatten(empty) = %v", flat)
	}
}

func TestLookup(t *testing.T) {
	s := newTestStore(t)
	root, err := NewBuilder(s).Build(stage(t, s, map[string]string{
		"top.txt":        "top",
		"dir/nested.txt": "nested",
	}))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	e, ok, err := Lookup(s, root, "dir/nested.txt")
	if err != nil || !ok {
		t.Fatalf("Lookup nested = %v, %v", ok, err)
	}
	if e.Hash != object.HashBytes([]byte("nested")) || e.IsTree() {
		t.Fatalf("entry = %+v", e)
	}

	e, ok, err = Lookup(s, root, "dir")
	if err != nil || !ok || !e.IsTree() {
		t.Fatalf("Lookup dir = %+v, %v, %v", e, ok, err)
	}

	for _, p := range []string{"missing", "top.txt/child", "dir/missing"} {
		if _, ok, err := Lookup(s, root, p); err != nil || ok {
			t.Errorf("Lookup(%q) = %v, %v; want not found", p, ok, err)
		}
	}
}
