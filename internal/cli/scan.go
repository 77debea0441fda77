package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reqsmith/pkg/config"
	"github.com/matzehuels/reqsmith/pkg/pipeline"
)

// scanOpts holds the command-line flags for the scan command.
type scanOpts struct {
	includeVenv bool
	noCache     bool
	refresh     bool
	jsonOut     bool
}

// newScanCmd creates the scan command. It runs the discovery and
// reconciliation stages only, never touching the manifest, so it works
// without poetry installed.
func newScanCmd() *cobra.Command {
	var opts scanOpts

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "List the dependencies a sync would register",
		Long: `Scan a Python project and report the reconciled dependency set without
modifying anything. Conflicts are resolved with the configured auto policy;
scan never prompts.

Examples:
  reqsmith scan                  # scan the current directory
  reqsmith scan ./backend --json # machine-readable output`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return runScan(cmd.Context(), root, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.includeVenv, "include-venv", false, "include packages installed in the active virtualenv")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the extraction cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-extract files, ignoring cached results")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "emit the requirement set as JSON")

	return cmd
}

// runScan discovers and reconciles requirements, then prints them.
func runScan(ctx context.Context, root string, opts scanOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	c := newCache(opts.noCache)
	defer c.Close()

	metrics := newRunMetrics(logger)
	defer metrics.register()()

	runner := pipeline.NewRunner(c, cfg, logger)
	popts := pipeline.Options{
		Root:           root,
		NonInteractive: true,
		IncludeVenv:    opts.includeVenv,
		Refresh:        opts.refresh,
	}

	prog := newProgress(logger)
	reqs, warnings, err := runner.Discover(ctx, popts)
	if err != nil {
		return err
	}
	set, moreWarnings, err := runner.Reconcile(ctx, reqs, popts)
	if err != nil {
		return err
	}
	warnings = append(warnings, moreWarnings...)
	prog.done(fmt.Sprintf("Found %d packages", set.Len()))

	if opts.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(set.Requirements())
	}

	fmt.Println(renderScanTable(set.Requirements()))
	for _, warn := range warnings {
		printWarning("%s: %s", warn.Stage, warn.Message)
	}
	printDetail(metrics.summary())
	return nil
}
