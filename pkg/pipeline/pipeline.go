// Package pipeline runs the scan → extract → reconcile → write sequence
// behind both CLI commands, so every entry point shares the same caching,
// logging and warning collection.
//
// Execution is strictly sequential: files are read one at a time, the
// conflict resolver blocks on the user, and poetry invocations run one
// after another. The only shared mutable state is the reconciled set,
// touched from the calling goroutine only.
package pipeline

import (
	"time"

	"github.com/matzehuels/reqsmith/pkg/poetry"
	"github.com/matzehuels/reqsmith/pkg/pydeps"
	"github.com/matzehuels/reqsmith/pkg/reconcile"
)

// Options configures one pipeline run.
type Options struct {
	// Root is the project directory to scan.
	Root string

	// NonInteractive suppresses all prompting: conflicts fall back to
	// the configured auto policy and manifest creation proceeds without
	// confirmation.
	NonInteractive bool

	// IncludeVenv folds the active virtual environment's pip freeze
	// output into the requirement stream.
	IncludeVenv bool

	// Overwrite re-adds packages already present in the manifest.
	Overwrite bool

	// DryRun stops short of invoking poetry add.
	DryRun bool

	// Refresh bypasses the extraction cache.
	Refresh bool
}

// Stage identifies where a warning originated.
type Stage string

const (
	StageScan      Stage = "scan"
	StageExtract   Stage = "extract"
	StageReconcile Stage = "reconcile"
	StageWrite     Stage = "write"
)

// Warning is a non-fatal problem surfaced in the end-of-run summary.
type Warning struct {
	Stage   Stage
	Message string
}

// Stats carries run timing and counts.
type Stats struct {
	FilesScanned int
	Extracted    int // raw requirement entries before reconciliation
	Reconciled   int
	ScanTime     time.Duration
	WriteTime    time.Duration
	CacheHits    int
	CacheMisses  int
}

// Result is the outcome of a full pipeline run.
type Result struct {
	RunID        string
	Requirements *reconcile.Set
	Write        *poetry.Result
	Warnings     []Warning
	Stats        Stats
}

// Ok reports whether the run completed without failed adds.
func (r *Result) Ok() bool {
	return r.Write == nil || r.Write.Ok()
}

// discovery is the intermediate product of the scan and extract stages.
type discovery struct {
	requirements []pydeps.Requirement
	warnings     []Warning
	stats        Stats
}
