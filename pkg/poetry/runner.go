package poetry

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// Runner executes an external command and returns its stdout. On failure
// the returned string carries the command's stderr for diagnostics.
// Implementations must honor context cancellation.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// execRunner runs commands through os/exec, rooted at a working directory.
type execRunner struct {
	dir string
}

// NewRunner creates a Runner that executes commands with dir as the
// working directory. An empty dir uses the process working directory.
func NewRunner(dir string) Runner {
	return &execRunner{dir: dir}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	if err != nil {
		return strings.TrimSpace(stderr.String()), err
	}
	return strings.TrimSpace(stdout.String()), nil
}
