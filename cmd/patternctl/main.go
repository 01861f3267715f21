// Command patternctl manages the architectural pattern catalog: a
// SQLite-backed store with full-text search, fed from Markdown
// write-ups. It is a sibling of archlint; the two share a repository
// but not a process.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Smith-Tools/archlint/internal/catalog"
)

var (
	cfgFile string
	cfg     *Config
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "patternctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "patternctl",
		Short: "Manage the architectural pattern catalog",
		Long: `patternctl stores and searches architectural pattern write-ups in a
local SQLite catalog with full-text search.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			var err error
			cfg, err = loadConfig(cfgFile, cmd.Root().PersistentFlags())
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./patternctl.yaml)")
	rootCmd.PersistentFlags().String("db", "", "path to the catalog database")

	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newRmCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newImportCmd())
	return rootCmd
}

// withStore opens the catalog, runs fn, and closes it.
func withStore(fn func(*catalog.Store) error) error {
	store, err := catalog.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newAddCmd() *cobra.Command {
	var (
		category string
		summary  string
		source   string
		fromFile string
	)

	cmd := &cobra.Command{
		Use:   "add <name> [content]",
		Short: "Add a pattern",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			content := ""
			if len(args) == 2 {
				content = args[1]
			}
			if fromFile != "" {
				data, err := os.ReadFile(fromFile)
				if err != nil {
					return err
				}
				content = string(data)
			}
			return withStore(func(s *catalog.Store) error {
				p, err := s.Add(catalog.AddParams{
					Name:     args[0],
					Category: category,
					Summary:  summary,
					Content:  content,
					Source:   source,
				})
				if err != nil {
					return err
				}
				fmt.Println(p.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "general", "pattern category")
	cmd.Flags().StringVar(&summary, "summary", "", "one-line summary")
	cmd.Flags().StringVar(&source, "source", "", "origin of the pattern")
	cmd.Flags().StringVar(&fromFile, "file", "", "read content from file")
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print a pattern as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withStore(func(s *catalog.Store) error {
				p, err := s.Get(args[0])
				if err != nil {
					return err
				}
				return printJSON(p)
			})
		},
	}
}

func newListCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List patterns",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withStore(func(s *catalog.Store) error {
				patterns, err := s.List(category)
				if err != nil {
					return err
				}
				for _, p := range patterns {
					fmt.Printf("%s  %-12s %s\n", p.ID, p.Category, p.Name)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withStore(func(s *catalog.Store) error {
				if limit == 0 {
					limit = cfg.Limit
				}
				results, err := s.Search(args[0], limit)
				if err != nil {
					return err
				}
				for _, r := range results {
					fmt.Printf("%s  %-12s %s\n", r.ID, r.Category, r.Name)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results")
	return cmd
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withStore(func(s *catalog.Store) error {
				return s.Delete(args[0])
			})
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print catalog statistics",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withStore(func(s *catalog.Store) error {
				st, err := s.Stats()
				if err != nil {
					return err
				}
				return printJSON(st)
			})
		},
	}
}

func newImportCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Import Markdown write-ups from a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withStore(func(s *catalog.Store) error {
				if category == "" {
					category = cfg.Category
				}
				res, err := s.ImportMarkdown(args[0], category)
				if err != nil {
					return err
				}
				fmt.Printf("imported %d patterns\n", res.Imported)
				for _, skip := range res.Skipped {
					fmt.Fprintf(os.Stderr, "patternctl: skipped %s\n", skip)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category for imported patterns")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
