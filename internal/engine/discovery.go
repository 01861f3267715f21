package engine

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
)

// ExcludeSpec is a compiled set of exclude glob patterns. A file
// matching any pattern is never read, parsed or reported.
type ExcludeSpec struct {
	matchers []glob.Glob
}

// NewExcludeSpec compiles the given patterns. Invalid patterns are
// skipped; exclusion is best-effort filtering, not validation.
func NewExcludeSpec(patterns []string) *ExcludeSpec {
	spec := &ExcludeSpec{}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			continue
		}
		spec.matchers = append(spec.matchers, g)
	}
	return spec
}

// Match reports whether the slash-separated relative path is excluded.
// Patterns of the `**/Dir/**` shape must also catch Dir at the root of
// the tree, so the path is tried with a leading separator as well.
func (s *ExcludeSpec) Match(rel string) bool {
	for _, g := range s.matchers {
		if g.Match(rel) || g.Match("/"+rel) {
			return true
		}
	}
	return false
}

// discover walks root and returns files matching any include pattern
// and no exclude pattern. Results are relative to root, deduplicated
// and sorted, which fixes the primary ordering of the final violation
// collection.
func discover(root string, include []string, excludes *ExcludeSpec) ([]string, error) {
	valid := make([]string, 0, len(include))
	for _, p := range include {
		if doublestar.ValidatePattern(p) {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool)
	var result []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			// Unreadable subtrees are skipped; only the root itself
			// is load-bearing and the caller stats it beforehand.
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if excludes.Match(rel) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}

		for _, p := range valid {
			matched, err := doublestar.Match(p, rel)
			if err == nil && matched {
				if !seen[rel] {
					seen[rel] = true
					result = append(result, rel)
				}
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(result)
	return result, nil
}
