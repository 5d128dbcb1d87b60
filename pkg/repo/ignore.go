package repo

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// IgnoreFile lists patterns for working tree files that Status does not
// report as untracked.
const IgnoreFile = ".twigignore"

// IgnoreChecker determines if a path should be ignored.
type IgnoreChecker struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	pattern  string
	negated  bool
	dirOnly  bool
	hasSlash bool // pattern contains a slash, so match against full path
	regex    *regexp.Regexp
}

// NewIgnoreChecker creates an IgnoreChecker for the working tree fs. The
// .twig/ directory is always ignored; patterns from a root-level .twigignore
// are applied on top in file order.
func NewIgnoreChecker(fs billy.Filesystem) (*IgnoreChecker, error) {
	ic := &IgnoreChecker{
		patterns: []ignorePattern{{pattern: DirName, dirOnly: true}},
	}

	f, err := fs.Open(IgnoreFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ic, nil
		}
		return nil, fmt.Errorf("read %s: %w", IgnoreFile, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if p := parseIgnoreLine(scanner.Text()); p != nil {
			ic.patterns = append(ic.patterns, *p)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", IgnoreFile, err)
	}
	return ic, nil
}

// parseIgnoreLine parses one .twigignore line. Returns nil for blank lines
// and comments.
func parseIgnoreLine(line string) *ignorePattern {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	p := &ignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	// A leading slash anchors the pattern to the repository root.
	anchored := strings.HasPrefix(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return nil
	}

	p.hasSlash = anchored || strings.Contains(line, "/")
	p.pattern = line
	if strings.Contains(line, "**") {
		if re, err := regexp.Compile(globToRegex(line)); err == nil {
			p.regex = re
		}
	}
	return p
}

// IsIgnored reports whether the slash-separated repo-relative path is
// ignored. A path inside an ignored directory is ignored. The last matching
// pattern wins, so "!" lines can re-include files.
func (ic *IgnoreChecker) IsIgnored(p string) bool {
	ignored := false
	for _, pat := range ic.patterns {
		if pat.matches(p) {
			ignored = !pat.negated
		}
	}
	return ignored
}

func (p *ignorePattern) matches(target string) bool {
	if p.dirOnly {
		// Directory patterns match the directory itself and everything
		// below it, at any depth unless the pattern is anchored by a slash.
		for dir := target; dir != "" && dir != "."; dir = path.Dir(dir) {
			if p.matchOne(dir) {
				return true
			}
		}
		return false
	}
	return p.matchOne(target)
}

func (p *ignorePattern) matchOne(target string) bool {
	if !p.hasSlash {
		target = path.Base(target)
	}
	if p.regex != nil {
		return p.regex.MatchString(target)
	}
	matched, _ := path.Match(p.pattern, target)
	return matched
}

func globToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			if i+2 < len(pattern) && pattern[i+2] == '/' {
				// Zero or more leading directories.
				b.WriteString("(?:.*/)?")
				i += 2
			} else {
				b.WriteString(".*")
				i++
			}
		case ch == '*':
			b.WriteString("[^/]*")
		case ch == '?':
			b.WriteString("[^/]")
		default:
			if strings.ContainsRune(`.+()|[]{}^$\`, rune(ch)) {
				b.WriteByte('\\')
			}
			b.WriteByte(ch)
		}
	}
	b.WriteString("$")
	return b.String()
}
