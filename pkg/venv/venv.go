// Package venv harvests installed packages from an active Python virtual
// environment by running pip freeze through the environment's own
// interpreter. The harvest is optional: without an active environment it
// yields nothing.
package venv

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/matzehuels/reqsmith/pkg/observability"
	"github.com/matzehuels/reqsmith/pkg/pydeps"
)

// Runner executes an external command and returns its stdout.
// poetry.NewRunner satisfies this.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// Harvester reads the active virtual environment's installed packages.
type Harvester struct {
	Getenv func(string) string // defaults to os.Getenv
	Runner Runner

	// Logf receives progress messages (optional).
	Logf func(format string, args ...any)
}

// New creates a harvester using the given runner.
func New(runner Runner) *Harvester {
	return &Harvester{
		Getenv: os.Getenv,
		Runner: runner,
		Logf:   func(string, ...any) {},
	}
}

// Active reports whether a virtual environment is active in the current
// process environment.
func (h *Harvester) Active() bool {
	return h.Getenv("VIRTUAL_ENV") != ""
}

// Packages returns the environment's installed packages as requirements
// pinned to their installed versions. Without an active environment it
// returns nil, nil.
func (h *Harvester) Packages(ctx context.Context) ([]pydeps.Requirement, error) {
	dir := h.Getenv("VIRTUAL_ENV")
	if dir == "" {
		h.Logf("no virtual environment active, skipping pip freeze harvest")
		return nil, nil
	}

	bin := pythonBin(dir)
	args := []string{"-m", "pip", "freeze"}
	start := time.Now()
	observability.Exec().OnCommandStart(ctx, bin, args)
	out, err := h.Runner.Run(ctx, bin, args...)
	observability.Exec().OnCommandComplete(ctx, bin, args, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return parseFreeze(out, "pip freeze ("+dir+")"), nil
}

// pythonBin locates the environment's interpreter.
func pythonBin(venvDir string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(venvDir, "Scripts", "python.exe")
	}
	return filepath.Join(venvDir, "bin", "python")
}

// parseFreeze converts pip freeze output into requirements. Pinned lines
// (name==version) keep their pin; direct references (name @ url) become
// unconstrained; editable installs and anything else unparseable are
// skipped.
func parseFreeze(out, source string) []pydeps.Requirement {
	var reqs []pydeps.Requirement
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}

		if name, version, ok := strings.Cut(line, "=="); ok {
			name = strings.TrimSpace(name)
			reqs = append(reqs, pydeps.Requirement{
				Name:    pydeps.Normalize(name),
				RawName: name,
				Spec:    "==" + strings.TrimSpace(version),
				Source:  source,
			})
			continue
		}

		if name, _, ok := strings.Cut(line, "@"); ok {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			reqs = append(reqs, pydeps.Requirement{
				Name:    pydeps.Normalize(name),
				RawName: name,
				Source:  source,
			})
		}
	}
	return reqs
}
