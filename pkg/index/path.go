package index

import (
	"fmt"
	"strings"
)

// Normalize converts a user-supplied path to index form: backslashes become
// forward slashes, leading "./" prefixes are stripped and a bare "." becomes
// the empty path.
func Normalize(p string) string {
	s := strings.ReplaceAll(p, "\\", "/")
	for strings.HasPrefix(s, "./") {
		s = s[2:]
	}
	if s == "." {
		s = ""
	}
	return s
}

// ValidatePath checks that p (already normalized) names a single file inside
// the repository: non-empty, relative, no empty, "." or ".." components and
// no trailing slash. Line breaks are rejected since the index is
// line-oriented.
func ValidatePath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.ContainsAny(p, "\n\r") {
		return fmt.Errorf("%w: %q contains a line break", ErrInvalidPath, p)
	}
	if strings.HasPrefix(p, "/") {
		return fmt.Errorf("%w: %q is absolute", ErrInvalidPath, p)
	}
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "":
			return fmt.Errorf("%w: %q has an empty component", ErrInvalidPath, p)
		case ".", "..":
			return fmt.Errorf("%w: %q has a relative component", ErrInvalidPath, p)
		}
	}
	return nil
}

// Parent returns p with its last slash-delimited component removed. Root
// level paths have the empty parent.
func Parent(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return ""
}

// Base returns the last slash-delimited component of p.
func Base(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

// Depth counts the components of p. The root has depth zero.
func Depth(p string) int {
	if p == "" {
		return 0
	}
	return strings.Count(p, "/") + 1
}

// conflicts reports whether a and b cannot both be staged: one names a file
// that the other treats as a directory.
func conflicts(a, b string) bool {
	return strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}
