package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reqsmith/pkg/config"
	"github.com/matzehuels/reqsmith/pkg/errors"
	"github.com/matzehuels/reqsmith/pkg/pipeline"
)

// syncOpts holds the command-line flags for the sync command.
type syncOpts struct {
	nonInteractive bool // suppress prompts, fall back to auto policies
	includeVenv    bool // harvest the active virtualenv's installed packages
	overwrite      bool // re-add packages already present in the manifest
	dryRun         bool // report without invoking poetry add
	noCache        bool // disable the extraction cache
	refresh        bool // bypass cached extraction results
}

// newSyncCmd creates the sync command.
func newSyncCmd() *cobra.Command {
	var opts syncOpts

	cmd := &cobra.Command{
		Use:   "sync [dir]",
		Short: "Scan a project and add its dependencies to poetry",
		Long: `Scan a Python project for imported packages and declared requirements,
reconcile version constraints, and register the result with poetry add.

The directory defaults to the current working directory. When a version
conflict is found between sources, sync prompts for a resolution unless
--non-interactive is set or a conflict_policy is configured.

Examples:
  reqsmith sync                      # sync the current directory
  reqsmith sync ./backend            # sync a subproject
  reqsmith sync --dry-run            # show what would be added
  reqsmith sync --non-interactive    # never prompt (CI use)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return runSync(cmd.Context(), root, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.nonInteractive, "non-interactive", false, "never prompt; unresolvable conflicts are skipped")
	cmd.Flags().BoolVar(&opts.includeVenv, "include-venv", false, "include packages installed in the active virtualenv")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "re-add packages already present in the manifest")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "report what would be added without modifying the manifest")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the extraction cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-extract files, ignoring cached results")

	return cmd
}

// runSync executes the full pipeline and prints a summary.
func runSync(ctx context.Context, root string, opts syncOpts) error {
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
	if !opts.nonInteractive {
		runner.Resolver = promptResolver{}
		runner.ConfirmInit = confirmInit
	}

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		Root:           root,
		NonInteractive: opts.nonInteractive,
		IncludeVenv:    opts.includeVenv,
		Overwrite:      opts.overwrite,
		DryRun:         opts.dryRun,
		Refresh:        opts.refresh,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Processed %d packages", result.Requirements.Len()))

	printSyncSummary(result, opts.dryRun)
	printDetail(metrics.summary())

	if !result.Ok() {
		return errors.New(errors.ErrCodeAddFailed, "%d packages could not be added", len(result.Write.Failed))
	}
	return nil
}
