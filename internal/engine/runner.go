// Package engine orchestrates one validation run: discover files,
// parse and extract each one from a worker pool, evaluate every loaded
// rule, and merge the results into a deterministically ordered
// collection.
package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Smith-Tools/archlint/internal/config"
	"github.com/Smith-Tools/archlint/internal/decl"
	"github.com/Smith-Tools/archlint/internal/rule"
	"github.com/Smith-Tools/archlint/internal/source"
)

// Fatal conditions: these abort the whole run, everything else is a
// per-file diagnostic.
var (
	ErrBadRoot = errors.New("target path is not a readable directory")
	ErrNoRules = errors.New("no rules loaded")
)

// Runner drives the validation pipeline. Config and Rules are built
// once before Run and are read-only from there on; worker tasks share
// them freely.
type Runner struct {
	Config *config.Config
	Rules  []rule.Rule

	// Workers bounds the parallel per-file tasks. Zero means NumCPU.
	Workers int

	Log *zap.Logger
}

// Result holds the output of a run.
type Result struct {
	Violations Collection

	// Errors are non-fatal per-file problems that are not part of the
	// diagnostic stream (rule settings that failed to apply).
	Errors []error
}

// fileResult is one worker's output, merged back in file order.
type fileResult struct {
	violations []rule.Violation
	errs       []error
}

// Run validates the tree rooted at root and returns the ordered
// collection. The error return is reserved for the fatal conditions;
// per-file failures are recorded as info-severity entries and the run
// continues.
func (r *Runner) Run(root string) (*Result, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadRoot, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrBadRoot, root)
	}
	if len(r.Rules) == 0 {
		return nil, ErrNoRules
	}

	excludes := NewExcludeSpec(r.Config.Exclude)
	files, err := discover(root, r.Config.Include, excludes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRoot, err)
	}
	log.Debug("files discovered", zap.Int("count", len(files)), zap.String("root", root))

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// One independent task per file; results land in an
	// index-addressed slice so completion order never affects the
	// final ordering.
	results := make([]fileResult, len(files))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, rel := range files {
		g.Go(func() error {
			results[i] = r.checkFile(filepath.Join(root, rel), log)
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{}
	for _, fr := range results {
		res.Violations = append(res.Violations, fr.violations...)
		res.Errors = append(res.Errors, fr.errs...)
	}
	log.Debug("run finished",
		zap.Int("violations", res.Violations.Count()),
		zap.Int("failing", res.Violations.Failing()))
	return res, nil
}

// checkFile runs the full per-file pipeline: read, parse, extract,
// evaluate. Failures degrade to an info-severity entry.
func (r *Runner) checkFile(path string, log *zap.Logger) fileResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileResult{violations: []rule.Violation{parseNote(path, 1, err.Error())}}
	}

	unit, err := source.Parse(path, data)
	if err != nil {
		var perr *source.ParseError
		if errors.As(err, &perr) {
			log.Debug("parse failed", zap.String("file", path), zap.Int("line", perr.Line))
			return fileResult{violations: []rule.Violation{parseNote(path, perr.Line, perr.Msg)}}
		}
		return fileResult{violations: []rule.Violation{parseNote(path, 1, err.Error())}}
	}

	decls := decl.Extract(unit, r.Config.Marker)
	if len(decls) == 0 {
		return fileResult{}
	}

	effective := config.Effective(r.Config, path)

	var out fileResult
	for _, d := range decls {
		for _, rl := range r.Rules {
			configured, err := configuredRule(rl, effective)
			if err != nil {
				out.errs = append(out.errs, fmt.Errorf("%s: %w", path, err))
				continue
			}
			if configured == nil {
				continue
			}
			out.violations = append(out.violations, configured.Check(d)...)
		}
	}
	return out
}

// configuredRule returns the rule ready to evaluate under the
// effective config, nil when the rule is disabled. Rules with custom
// settings are cloned so the registry's instance stays pristine.
func configuredRule(rl rule.Rule, effective map[string]config.RuleCfg) (rule.Rule, error) {
	cfg, ok := effective[rl.Name()]
	if !ok {
		// External rules have no config entry; they run as loaded.
		return rl, nil
	}
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.Settings == nil {
		return rl, nil
	}
	if _, ok := rl.(rule.Configurable); !ok {
		return rl, nil
	}
	clone := rule.Clone(rl)
	if cc, ok := clone.(rule.Configurable); ok {
		if err := cc.ApplySettings(cfg.Settings); err != nil {
			return nil, err
		}
	}
	return clone, nil
}

// parseNote builds the info-severity entry recorded for an unreadable
// or malformed file. It surfaces in the diagnostic stream but never
// fails the build on its own.
func parseNote(path string, line int, msg string) rule.Violation {
	if line < 1 {
		line = 1
	}
	return rule.Violation{
		Severity: rule.Info,
		RuleID:   ParseErrorRuleID,
		RuleName: ParseErrorRuleID,
		File:     path,
		Line:     line,
		Message:  msg,
	}
}
