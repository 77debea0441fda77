package poetry

import (
	"context"

	"github.com/matzehuels/reqsmith/pkg/pydeps"
)

// AddOptions controls how a reconciled requirement set is written.
type AddOptions struct {
	// Overwrite re-adds packages that the manifest already contains.
	Overwrite bool
	// DryRun reports what would be added without invoking poetry add.
	DryRun bool
}

// Failure records one package that poetry rejected.
type Failure struct {
	Requirement pydeps.Requirement
	Err         error
}

// Result summarizes a manifest write.
type Result struct {
	Added   []pydeps.Requirement // successfully registered (as actually added)
	Skipped []pydeps.Requirement // already present in the manifest
	Failed  []Failure            // rejected by poetry
}

// Ok reports whether every add succeeded.
func (r *Result) Ok() bool {
	return len(r.Failed) == 0
}

// AddAll registers each requirement in order. Invocations are
// independent: one rejected package is recorded and the remaining adds
// continue. Only context cancellation aborts the loop early.
func (c *Client) AddAll(ctx context.Context, reqs []pydeps.Requirement, opts AddOptions) (*Result, error) {
	result := &Result{}

	var existing map[string]bool
	if !opts.Overwrite && !opts.DryRun {
		existing = c.Existing(ctx)
	}

	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if existing[req.Name] {
			c.Logf("%s already in %s, skipping", req.RawName, ManifestFile)
			result.Skipped = append(result.Skipped, req)
			continue
		}

		if opts.DryRun {
			c.Logf("would add %s", req)
			result.Added = append(result.Added, req)
			continue
		}

		added, err := c.Add(ctx, req)
		if err != nil {
			c.Logf("failed to add %s: %v", req, err)
			result.Failed = append(result.Failed, Failure{Requirement: req, Err: err})
			continue
		}
		c.Logf("added %s", added)
		result.Added = append(result.Added, added)
	}

	return result, nil
}
