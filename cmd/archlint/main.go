// Command archlint validates reducer-convention declarations in a
// Swift source tree and reports violations in a build-tool-compatible
// diagnostic format. Build systems invoke it as a pre-build step; the
// exit code is the step's failure signal.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/Smith-Tools/archlint/internal/adapter"
	"github.com/Smith-Tools/archlint/internal/config"
	"github.com/Smith-Tools/archlint/internal/log"
	"github.com/Smith-Tools/archlint/internal/rule"

	// Import all rule packages so their init() functions register rules.
	_ "github.com/Smith-Tools/archlint/internal/rules/closureinjection"
	_ "github.com/Smith-Tools/archlint/internal/rules/duplicatemembers"
	_ "github.com/Smith-Tools/archlint/internal/rules/monolithicdecl"
	_ "github.com/Smith-Tools/archlint/internal/rules/requirednesting"
	_ "github.com/Smith-Tools/archlint/internal/rules/stateactioncoupling"
)

func main() {
	os.Exit(run())
}

const usageText = `Usage: archlint [command] [flags] <targetPath>

Commands:
  check     Validate a source tree (default when given a path)
  rules     List registered rules
  init      Generate a default .archlint.yml config file
  version   Print version and exit

Global flags:
  -h, --help      Show this help

Run 'archlint check --help' for the validation flags.
`

func run() int {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		return 2
	}

	first := os.Args[1]

	switch first {
	case "--help", "-h":
		fmt.Fprint(os.Stderr, usageText)
		return 0
	}

	switch first {
	case "check":
		return runCheck(os.Args[2:])
	case "rules":
		return runRules(os.Args[2:])
	case "init":
		return runInit(os.Args[2:])
	case "version":
		printVersion()
		return 0
	default:
		// Build-tool ergonomics: a bare path (possibly preceded by
		// flags) means check.
		return runCheck(os.Args[1:])
	}
}

func printVersion() {
	version := "(devel)"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	fmt.Printf("archlint %s\n", version)
}

// runCheck implements the "check" subcommand: validate a tree.
func runCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	var (
		excludes   []string
		includes   []string
		configPath string
		rulesDir   string
		marker     string
		format     string
		workers    int
		verbose    bool
	)

	fs.StringSliceVar(&excludes, "exclude", nil, "Override the default exclude globs (comma-separated)")
	fs.StringSliceVar(&includes, "include", nil, "Override the default include globs (comma-separated)")
	fs.StringVarP(&configPath, "config", "c", "", "Override config file path")
	fs.StringVar(&rulesDir, "rules-dir", "", "Directory of external rule providers")
	fs.StringVar(&marker, "marker", "", "Conformance identifier to match (default from config, else Reducer)")
	fs.StringVarP(&format, "format", "f", "text", "Output format: text, json")
	fs.IntVar(&workers, "workers", 0, "Parallel file workers (0 = number of CPUs)")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Verbose logging to stderr")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: archlint check [flags] <targetPath>\n\n"+
			"Validate reducer declarations under targetPath.\n\n"+
			"Exit code 0 means no violations; non-zero means violations or a fatal error.\n\n"+
			"Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "archlint: expected exactly one target path\n\n")
		fs.Usage()
		return 2
	}

	logger := log.New(verbose)
	defer func() { _ = logger.Sync() }()

	a := adapter.New(os.Stdout, os.Stderr, logger)
	return a.Run(adapter.Invocation{
		Target:     fs.Arg(0),
		Excludes:   excludes,
		Includes:   includes,
		ConfigPath: configPath,
		RulesDir:   rulesDir,
		Marker:     marker,
		Format:     format,
		Workers:    workers,
	})
}

// runRules implements the "rules" subcommand.
func runRules(args []string) int {
	fs := flag.NewFlagSet("rules", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	for _, r := range rule.All() {
		fmt.Printf("%-6s %s\n", r.ID(), r.Name())
	}
	return 0
}

// runInit implements the "init" subcommand: generate .archlint.yml.
func runInit(args []string) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: archlint init\n\n"+
			"Generate a default .archlint.yml config file in the current directory.\n")
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "archlint: init takes no arguments\n")
		return 2
	}

	const configFile = ".archlint.yml"

	if _, err := os.Stat(configFile); err == nil {
		fmt.Fprintf(os.Stderr, "archlint: %s already exists\n", configFile)
		return 2
	}

	data, err := yaml.Marshal(config.DumpDefaults())
	if err != nil {
		fmt.Fprintf(os.Stderr, "archlint: marshalling config: %v\n", err)
		return 2
	}

	if err := os.WriteFile(configFile, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "archlint: writing %s: %v\n", configFile, err)
		return 2
	}

	fmt.Fprintf(os.Stderr, "archlint: created %s\n", configFile)
	return 0
}
