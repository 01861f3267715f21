// Package registry assembles the rule set for one engine invocation:
// the compiled-in rules plus external rule providers discovered under
// a convention-based directory layout.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/Smith-Tools/archlint/internal/rule"
)

// providerExecutable is the file each provider directory must contain.
const providerExecutable = "rule"

// LoadError records one rule source that failed to load. It is a
// warning: other sources still load.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading rule source %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// DuplicateIDError is fatal: two loaded rules share an ID, which would
// make diagnostics unattributable.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate rule id %q", e.ID)
}

// Options controls rule loading.
type Options struct {
	// RulesDir is the root of the external provider layout: one
	// subdirectory per provider, each containing an executable named
	// "rule". Empty disables external loading.
	RulesDir string

	Log *zap.Logger
}

// Result is the outcome of loading: the rules to run, in evaluation
// order, plus per-source warnings.
type Result struct {
	Rules    []rule.Rule
	Warnings []*LoadError
}

// Load returns the built-in rules followed by external providers in
// directory-name order. A duplicate rule ID anywhere in the set is
// fatal.
func Load(opts Options) (*Result, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	res := &Result{Rules: rule.All()}

	if opts.RulesDir != "" {
		external, warnings := discoverProviders(opts.RulesDir, log)
		res.Rules = append(res.Rules, external...)
		res.Warnings = warnings
	}

	seen := make(map[string]bool, len(res.Rules))
	for _, r := range res.Rules {
		if seen[r.ID()] {
			return nil, &DuplicateIDError{ID: r.ID()}
		}
		seen[r.ID()] = true
	}

	log.Debug("rules loaded",
		zap.Int("count", len(res.Rules)),
		zap.Int("warnings", len(res.Warnings)))
	return res, nil
}

// discoverProviders scans rulesDir for provider directories. A missing
// rulesDir is a single warning, not a fatal error.
func discoverProviders(rulesDir string, log *zap.Logger) ([]rule.Rule, []*LoadError) {
	entries, err := os.ReadDir(rulesDir)
	if err != nil {
		return nil, []*LoadError{{Source: rulesDir, Err: err}}
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var rules []rule.Rule
	var warnings []*LoadError
	for _, name := range names {
		dir := filepath.Join(rulesDir, name)
		r, err := loadProvider(dir)
		if err != nil {
			warnings = append(warnings, &LoadError{Source: dir, Err: err})
			continue
		}
		log.Debug("external rule loaded", zap.String("id", r.ID()), zap.String("dir", dir))
		rules = append(rules, r)
	}
	return rules, warnings
}

func loadProvider(dir string) (rule.Rule, error) {
	path := filepath.Join(dir, providerExecutable)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("no %q executable: %w", providerExecutable, err)
	}
	if info.IsDir() || info.Mode()&0o111 == 0 {
		return nil, fmt.Errorf("%s is not executable", path)
	}
	return newExternalRule(path)
}
