// Package walker expands the configured file globs into the deterministic
// set of source files for one indexing run.
package walker

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Walker collects candidate dotfiles from glob patterns.
type Walker struct {
	globs   []string
	exclude *regexp.Regexp
}

// New creates a walker. exclude may be nil.
func New(globs []string, exclude *regexp.Regexp) *Walker {
	return &Walker{globs: globs, exclude: exclude}
}

// Collect expands every glob, deduplicates the results, drops excluded and
// non-regular files, and returns absolute paths in lexicographic order so
// indexing runs are reproducible. A glob matching nothing is not an error.
func (w *Walker) Collect() ([]string, error) {
	seen := make(map[string]struct{})

	for _, g := range w.globs {
		matches, err := filepath.Glob(ExpandHome(g))
		if err != nil {
			return nil, fmt.Errorf("bad file glob %q: %w", g, err)
		}
		for _, m := range matches {
			abs, err := filepath.Abs(m)
			if err != nil {
				continue
			}
			seen[abs] = struct{}{}
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		if w.exclude != nil && w.exclude.MatchString(p) {
			continue
		}
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, p)
	}

	sort.Strings(paths)
	return paths, nil
}

// ReadText reads a file for parsing. skip is true for unreadable or binary
// content; such files are reported in the run summary, not fatal.
func ReadText(path string) (text string, skip bool, err error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", true, fmt.Errorf("read %s: %w", path, err)
	}
	if IsBinary(content) {
		return "", true, nil
	}
	return string(content), false, nil
}

// IsBinary checks if the content appears to be binary by looking for null
// bytes in the first 512 bytes. This is a heuristic used by git and other tools.
func IsBinary(content []byte) bool {
	checkLen := min(len(content), 512)

	for i := range checkLen {
		if content[i] == 0 {
			return true
		}
	}
	return false
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
