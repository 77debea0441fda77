package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/reqsmith/pkg/cache"
	"github.com/matzehuels/reqsmith/pkg/catalog"
	"github.com/matzehuels/reqsmith/pkg/config"
	"github.com/matzehuels/reqsmith/pkg/errors"
	"github.com/matzehuels/reqsmith/pkg/observability"
	"github.com/matzehuels/reqsmith/pkg/poetry"
	"github.com/matzehuels/reqsmith/pkg/pydeps"
	"github.com/matzehuels/reqsmith/pkg/reconcile"
	"github.com/matzehuels/reqsmith/pkg/scan"
	"github.com/matzehuels/reqsmith/pkg/venv"
)

// Runner executes pipeline runs with a shared cache and logger.
type Runner struct {
	Cache   cache.Cache
	Config  *config.Config
	Catalog *catalog.Catalog
	Logger  *log.Logger

	// Resolver settles version conflicts. When nil, the configured
	// auto policy applies.
	Resolver reconcile.Resolver

	// ConfirmInit is consulted before creating a missing manifest.
	// When nil, creation proceeds without asking.
	ConfirmInit func(ctx context.Context) bool

	// Poetry overrides the poetry client, for tests.
	Poetry *poetry.Client
}

// NewRunner creates a runner. A nil cache disables caching, a nil config
// uses defaults, and a nil logger uses the package default.
func NewRunner(c cache.Cache, cfg *config.Config, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Config:  cfg,
		Catalog: catalog.Default().Extend(cfg.Renames),
		Logger:  logger,
	}
}

// Execute runs the full pipeline against opts.Root and writes the
// reconciled set to the manifest. Fatal errors (missing poetry, declined
// manifest creation) abort; everything else lands in Result.Warnings.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	logger := r.Logger.With("run", result.RunID[:8])

	client := r.poetryClient(opts.Root, logger)
	if err := client.Available(ctx); err != nil {
		return result, err
	}

	if !client.HasManifest() {
		if err := r.ensureManifest(ctx, client, opts, result); err != nil {
			return result, err
		}
	}

	disc, err := r.discover(ctx, opts, logger)
	if err != nil {
		return result, err
	}
	result.Warnings = disc.warnings
	result.Stats = disc.stats

	set, err := r.reconcile(ctx, disc.requirements, opts, result)
	if err != nil {
		return result, err
	}
	result.Requirements = set
	result.Stats.Reconciled = set.Len()

	writeStart := time.Now()
	write, err := client.AddAll(ctx, set.Requirements(), poetry.AddOptions{
		Overwrite: opts.Overwrite,
		DryRun:    opts.DryRun,
	})
	result.Write = write
	result.Stats.WriteTime = time.Since(writeStart)
	if err != nil {
		return result, err
	}

	for _, f := range write.Failed {
		result.Warnings = append(result.Warnings, Warning{
			Stage:   StageWrite,
			Message: fmt.Sprintf("%s: %s", f.Requirement, errors.UserMessage(f.Err)),
		})
	}

	logger.Info("run complete",
		"files", result.Stats.FilesScanned,
		"packages", result.Stats.Reconciled,
		"added", len(write.Added),
		"skipped", len(write.Skipped),
		"failed", len(write.Failed))

	return result, nil
}

// Discover runs only the scan and extract stages, returning the raw
// requirement stream in traversal order. Used by the scan command.
func (r *Runner) Discover(ctx context.Context, opts Options) ([]pydeps.Requirement, []Warning, error) {
	disc, err := r.discover(ctx, opts, r.Logger)
	if err != nil {
		return nil, nil, err
	}
	return disc.requirements, disc.warnings, nil
}

// Reconcile folds a requirement stream into the final set using the
// runner's conflict policy.
func (r *Runner) Reconcile(ctx context.Context, reqs []pydeps.Requirement, opts Options) (*Set, []Warning, error) {
	result := &Result{}
	set, err := r.reconcile(ctx, reqs, opts, result)
	return set, result.Warnings, err
}

// Set is re-exported for callers that only import the pipeline.
type Set = reconcile.Set

func (r *Runner) poetryClient(root string, logger *log.Logger) *poetry.Client {
	if r.Poetry != nil {
		return r.Poetry
	}
	client := poetry.NewClient(root, nil)
	client.Bin = r.Config.PoetryBin
	client.Logf = logger.Debugf
	return client
}

func (r *Runner) ensureManifest(ctx context.Context, client *poetry.Client, opts Options, result *Result) error {
	switch {
	case opts.DryRun:
		result.Warnings = append(result.Warnings, Warning{
			Stage:   StageWrite,
			Message: poetry.ManifestFile + " not found (dry run, not created)",
		})
		return nil
	case opts.NonInteractive:
		result.Warnings = append(result.Warnings, Warning{
			Stage:   StageWrite,
			Message: poetry.ManifestFile + " not found, created without confirmation",
		})
	case r.ConfirmInit == nil || r.ConfirmInit(ctx):
		// Confirmed (or no confirmation channel wired).
	default:
		return errors.New(errors.ErrCodeManifestMissing,
			"%s not found and creation declined", poetry.ManifestFile)
	}
	return client.Init(ctx)
}

func (r *Runner) discover(ctx context.Context, opts Options, logger *log.Logger) (*discovery, error) {
	disc := &discovery{}
	start := time.Now()

	walker := scan.New(r.Config.SkipDirs...)
	walker.Warn = func(err error) {
		logger.Warn(errors.UserMessage(err))
		disc.warnings = append(disc.warnings, Warning{Stage: StageScan, Message: errors.UserMessage(err)})
	}

	files, err := walker.Walk(opts.Root)
	if err != nil {
		return nil, err
	}
	disc.stats.FilesScanned = len(files)
	observability.Scan().OnWalkComplete(ctx, opts.Root, len(files), time.Since(start))

	extractors := []pydeps.Extractor{
		pydeps.NewImports(r.Catalog),
		pydeps.NewRequirements(),
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		reqs, err := r.extractFile(ctx, path, opts.Refresh, extractors, &disc.stats)
		observability.Scan().OnFileExtracted(ctx, path, len(reqs), err)
		if err != nil {
			logger.Warn("skipping file", "path", path, "err", errors.UserMessage(err))
			disc.warnings = append(disc.warnings, Warning{Stage: StageExtract, Message: errors.UserMessage(err)})
			continue
		}
		disc.requirements = append(disc.requirements, reqs...)
	}

	if opts.IncludeVenv {
		h := venv.New(poetry.NewRunner(opts.Root))
		h.Logf = logger.Debugf
		reqs, err := h.Packages(ctx)
		if err != nil {
			logger.Warn("pip freeze harvest failed", "err", err)
			disc.warnings = append(disc.warnings, Warning{
				Stage:   StageExtract,
				Message: fmt.Sprintf("pip freeze harvest failed: %v", err),
			})
		} else {
			disc.requirements = append(disc.requirements, reqs...)
		}
	}

	disc.stats.Extracted = len(disc.requirements)
	disc.stats.ScanTime = time.Since(start)
	return disc, nil
}

// extractFile extracts one file, consulting the cache first. Cache
// failures are invisible: extraction just proceeds uncached, counted
// as a miss.
func (r *Runner) extractFile(ctx context.Context, path string, refresh bool, extractors []pydeps.Extractor, stats *Stats) ([]pydeps.Requirement, error) {
	extractor, err := pydeps.Detect(path, extractors...)
	if err != nil {
		return nil, err
	}

	info, statErr := os.Stat(path)
	var key string
	if statErr == nil {
		key = cache.ExtractKey(path, info.ModTime().UnixNano(), info.Size())
	}

	if key != "" && !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var reqs []pydeps.Requirement
			if json.Unmarshal(data, &reqs) == nil {
				stats.CacheHits++
				observability.Cache().OnCacheHit(ctx, "extract")
				return reqs, nil
			}
		}
		stats.CacheMisses++
		observability.Cache().OnCacheMiss(ctx, "extract")
	}

	reqs, err := extractor.Extract(path)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if data, err := json.Marshal(reqs); err == nil {
			if r.Cache.Set(ctx, key, data, cache.DefaultTTL) == nil {
				observability.Cache().OnCacheSet(ctx, "extract", len(data))
			}
		}
	}
	return reqs, nil
}

func (r *Runner) reconcile(ctx context.Context, reqs []pydeps.Requirement, opts Options, result *Result) (*reconcile.Set, error) {
	ignored := r.Config.Ignored(pydeps.Normalize)
	if len(ignored) > 0 {
		filtered := reqs[:0:0]
		for _, req := range reqs {
			if ignored[req.Name] {
				continue
			}
			filtered = append(filtered, req)
		}
		reqs = filtered
	}

	resolver := r.conflictResolver(opts)
	interactive := !opts.NonInteractive && r.Config.ConflictPolicy == config.PolicyPrompt && r.Resolver != nil

	recording := reconcile.ResolverFunc(func(ctx context.Context, c reconcile.Conflict) (reconcile.Decision, error) {
		decision, err := resolver.Resolve(ctx, c)
		if err != nil {
			return decision, err
		}
		observability.Scan().OnConflictResolved(ctx, c.Name, decision.String(), interactive)
		if !interactive {
			result.Warnings = append(result.Warnings, Warning{
				Stage: StageReconcile,
				Message: fmt.Sprintf("%s: %s (%s) vs %s (%s) auto-resolved: %s",
					c.Name, c.Existing.Spec, c.Existing.Source, c.Incoming.Spec, c.Incoming.Source, decision),
			})
		}
		return decision, nil
	})

	rec := reconcile.New(r.Catalog, recording)
	rec.Logf = r.Logger.Debugf
	return rec.Reconcile(ctx, reqs)
}

// conflictResolver picks the effective conflict policy for this run.
func (r *Runner) conflictResolver(opts Options) reconcile.Resolver {
	if opts.NonInteractive {
		return reconcile.AutoSkip{}
	}
	switch r.Config.ConflictPolicy {
	case config.PolicySkip:
		return reconcile.AutoSkip{}
	case config.PolicyPreferConstrained:
		return reconcile.AutoPreferConstrained{}
	}
	if r.Resolver != nil {
		return r.Resolver
	}
	return reconcile.AutoSkip{}
}
