// Package poetry wraps the poetry command-line tool. It is the only
// place where the Poetry manifest is touched, and it is touched only
// through poetry's own interface: this package never parses or edits
// pyproject.toml itself.
//
// Success and failure of every operation is determined by poetry's exit
// code, passed through unchanged.
package poetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/reqsmith/pkg/errors"
	"github.com/matzehuels/reqsmith/pkg/observability"
	"github.com/matzehuels/reqsmith/pkg/pydeps"
)

// DefaultBin is the poetry executable name resolved via PATH.
const DefaultBin = "poetry"

// ManifestFile is the manifest owned by poetry.
const ManifestFile = "pyproject.toml"

// Client invokes poetry operations in one project directory.
type Client struct {
	Bin    string // poetry executable (default "poetry")
	Dir    string // project directory
	runner Runner

	// Logf receives progress messages (optional).
	Logf func(format string, args ...any)
}

// NewClient creates a client for the project at dir. A nil runner
// defaults to executing commands via os/exec in dir.
func NewClient(dir string, runner Runner) *Client {
	if runner == nil {
		runner = NewRunner(dir)
	}
	return &Client{
		Bin:    DefaultBin,
		Dir:    dir,
		runner: runner,
		Logf:   func(string, ...any) {},
	}
}

// run invokes one poetry command through the runner, emitting exec
// events around it. Instrumentation lives here rather than in the
// runner so every transport, fakes included, is observed.
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	start := time.Now()
	observability.Exec().OnCommandStart(ctx, c.Bin, args)
	out, err := c.runner.Run(ctx, c.Bin, args...)
	observability.Exec().OnCommandComplete(ctx, c.Bin, args, time.Since(start), err)
	return out, err
}

// Available checks that poetry is installed by probing its version
// command. Returns a POETRY_MISSING error when the probe fails.
func (c *Client) Available(ctx context.Context) error {
	if _, err := c.run(ctx, "--version"); err != nil {
		return errors.Wrap(errors.ErrCodePoetryMissing, err,
			"poetry is not installed or not on PATH; install it and rerun")
	}
	return nil
}

// HasManifest reports whether the project manifest exists.
func (c *Client) HasManifest() bool {
	_, err := os.Stat(filepath.Join(c.Dir, ManifestFile))
	return err == nil
}

// Init creates the manifest via "poetry init --no-interaction" and
// produces an initial lock file.
func (c *Client) Init(ctx context.Context) error {
	if out, err := c.run(ctx, "init", "--no-interaction"); err != nil {
		return errors.Wrap(errors.ErrCodeManifestMissing, err, "poetry init: %s", out)
	}
	c.Logf("%s created", ManifestFile)
	if out, err := c.run(ctx, "lock"); err != nil {
		return errors.Wrap(errors.ErrCodeManifestMissing, err, "poetry lock: %s", out)
	}
	return nil
}

// Existing returns the normalized names of packages already registered
// in the manifest, read from "poetry show --tree". A project without an
// installed environment yields an empty set rather than an error: the
// add operations will surface any real problem themselves.
func (c *Client) Existing(ctx context.Context) map[string]bool {
	out, err := c.run(ctx, "show", "--tree")
	if err != nil {
		c.Logf("poetry show failed, assuming no existing dependencies: %v", err)
		return map[string]bool{}
	}
	return parseShowTree(out)
}

// Add registers one dependency via "poetry add". Constrained adds that
// fail are retried without the constraint before giving up, since a
// too-narrow pin is the most common reason for a rejected add.
// The returned requirement is what was actually added.
func (c *Client) Add(ctx context.Context, req pydeps.Requirement) (pydeps.Requirement, error) {
	spec := req.RawName
	if req.Constrained() {
		spec = req.RawName + req.Spec
	}

	out, err := c.run(ctx, "add", spec)
	if err == nil {
		return req, nil
	}

	if req.Constrained() {
		c.Logf("failed to add %s, retrying without version constraint", spec)
		if _, retryErr := c.run(ctx, "add", req.RawName); retryErr == nil {
			relaxed := req
			relaxed.Spec = ""
			return relaxed, nil
		}
	}

	return req, errors.Wrap(errors.ErrCodeAddFailed, err, "poetry add %s: %s", spec, firstLine(out))
}

// parseShowTree extracts top-level package names from poetry show --tree
// output. Dependency lines are indented or drawn with box characters;
// only lines starting with a package token count.
func parseShowTree(out string) map[string]bool {
	existing := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		if line == "" || line[0] == ' ' || !isNameStart(line[0]) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		existing[pydeps.Normalize(fields[0])] = true
	}
	return existing
}

func isNameStart(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
