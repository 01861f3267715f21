// Package adapter is the glue between a host build system and the
// validation engine. The host invokes it once per compilation unit
// with a target directory and exclude globs; the adapter's exit code
// is the build step's failure signal.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/Smith-Tools/archlint/internal/config"
	"github.com/Smith-Tools/archlint/internal/engine"
	"github.com/Smith-Tools/archlint/internal/output"
	"github.com/Smith-Tools/archlint/internal/registry"
)

// Adapter states. A run walks idle → invoked → running and ends in
// exactly one terminal state.
const (
	StateIdle              = "idle"
	StateInvoked           = "invoked"
	StateRunning           = "running"
	StateSucceeded         = "succeeded"
	StateFailedDiagnostics = "failed_diagnostics"
	StateFailedFatal       = "failed_fatal"
)

// Adapter events.
const (
	EventInvoke  = "invoke"
	EventStart   = "start"
	EventSucceed = "succeed"
	EventFail    = "fail"
	EventAbort   = "abort"
)

// Exit codes. Only zero versus non-zero is load-bearing for the host.
const (
	ExitOK          = 0
	ExitDiagnostics = 1
	ExitFatal       = 2
)

// Invocation carries what the host build system hands over.
type Invocation struct {
	Target     string
	Excludes   []string // empty means configured/default excludes
	Includes   []string
	ConfigPath string
	RulesDir   string
	Marker     string
	Format     string
	Workers    int
}

// Adapter runs the engine on behalf of a build system and maps the
// outcome onto an exit code.
type Adapter struct {
	machine *fsm.FSM
	stdout  io.Writer
	stderr  io.Writer
	log     *zap.Logger
}

// New returns an idle adapter writing diagnostics to stdout and fatal
// errors to stderr.
func New(stdout, stderr io.Writer, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Adapter{stdout: stdout, stderr: stderr, log: logger}
	a.machine = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: EventInvoke, Src: []string{StateIdle}, Dst: StateInvoked},
			{Name: EventStart, Src: []string{StateInvoked}, Dst: StateRunning},
			{Name: EventSucceed, Src: []string{StateRunning}, Dst: StateSucceeded},
			{Name: EventFail, Src: []string{StateRunning}, Dst: StateFailedDiagnostics},
			{Name: EventAbort, Src: []string{StateInvoked, StateRunning}, Dst: StateFailedFatal},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Debug("adapter transition",
					zap.String("event", e.Event),
					zap.String("from", e.Src),
					zap.String("to", e.Dst))
			},
		},
	)
	return a
}

// State returns the adapter's current state.
func (a *Adapter) State() string { return a.machine.Current() }

// Run executes one invocation end to end and returns the process exit
// code. It can be called once per Adapter.
func (a *Adapter) Run(inv Invocation) int {
	ctx := context.Background()
	if err := a.machine.Event(ctx, EventInvoke); err != nil {
		fmt.Fprintf(a.stderr, "archlint: adapter already used: %v\n", err)
		return ExitFatal
	}

	cfg, err := a.loadConfig(inv)
	if err != nil {
		return a.abort(ctx, err)
	}

	reg, err := registry.Load(registry.Options{RulesDir: rulesDir(cfg, inv), Log: a.log})
	if err != nil {
		return a.abort(ctx, err)
	}
	for _, w := range reg.Warnings {
		fmt.Fprintf(a.stderr, "archlint: warning: %v\n", w)
	}

	if err := a.machine.Event(ctx, EventStart); err != nil {
		return a.abort(ctx, err)
	}

	runner := &engine.Runner{
		Config:  cfg,
		Rules:   reg.Rules,
		Workers: inv.Workers,
		Log:     a.log,
	}
	result, err := runner.Run(inv.Target)
	if err != nil {
		return a.abort(ctx, err)
	}

	for _, e := range result.Errors {
		fmt.Fprintf(a.stderr, "archlint: %v\n", e)
	}

	formatter := output.ByName(inv.Format)
	if result.Violations.Count() > 0 {
		if err := formatter.Format(a.stdout, result.Violations); err != nil {
			fmt.Fprintf(a.stderr, "archlint: writing output: %v\n", err)
		}
	}

	if result.Violations.Failing() > 0 {
		_ = a.machine.Event(ctx, EventFail)
		return ExitDiagnostics
	}
	if len(result.Errors) > 0 {
		return a.abort(ctx, errors.New("rule configuration errors"))
	}
	_ = a.machine.Event(ctx, EventSucceed)
	return ExitOK
}

// abort moves to the fatal terminal state with a single explanatory
// line on stderr; no per-violation diagnostics exist in this path.
func (a *Adapter) abort(ctx context.Context, err error) int {
	_ = a.machine.Event(ctx, EventAbort)
	fmt.Fprintf(a.stderr, "archlint: fatal: %v\n", err)
	return ExitFatal
}

// loadConfig resolves configuration: explicit path, else discovery
// from the target, else defaults. CLI-provided excludes, includes and
// marker override the file.
func (a *Adapter) loadConfig(inv Invocation) (*config.Config, error) {
	defaults := config.Defaults()

	var loaded *config.Config
	switch {
	case inv.ConfigPath != "":
		c, err := config.Load(inv.ConfigPath)
		if err != nil {
			return nil, err
		}
		loaded = c
	default:
		start := inv.Target
		if _, err := os.Stat(start); err != nil {
			start = "."
		}
		if discovered, err := config.Discover(start); err == nil && discovered != "" {
			c, err := config.Load(discovered)
			if err != nil {
				return nil, err
			}
			loaded = c
			a.log.Debug("config discovered", zap.String("path", discovered))
		}
	}

	cfg := config.Merge(defaults, loaded)
	if len(inv.Excludes) > 0 {
		cfg.Exclude = inv.Excludes
	}
	if len(inv.Includes) > 0 {
		cfg.Include = inv.Includes
	}
	if inv.Marker != "" {
		cfg.Marker = inv.Marker
	}
	return cfg, nil
}

func rulesDir(cfg *config.Config, inv Invocation) string {
	if inv.RulesDir != "" {
		return inv.RulesDir
	}
	return cfg.RulesDir
}
