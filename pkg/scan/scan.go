// Package scan walks a project tree and yields the files that feed
// requirement extraction: Python sources and pip requirements files.
//
// Traversal is deterministic: directory entries are visited in sorted
// order so downstream insertion-order guarantees do not depend on the
// platform's directory ordering. Well-known non-source directories
// (virtual environments, VCS metadata, caches) are pruned, symlinked
// directories are not followed, and unreadable directories are reported
// as warnings rather than aborting the walk.
package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/reqsmith/pkg/errors"
)

// DefaultSkipDirs are directory names pruned from the walk.
var DefaultSkipDirs = []string{
	".git", ".hg", ".svn",
	".venv", "venv", "env", ".env",
	"__pycache__", ".mypy_cache", ".pytest_cache", ".ruff_cache", ".tox",
	"node_modules", "site-packages",
	"build", "dist", ".eggs",
	".idea", ".vscode",
}

// Walker produces the candidate file paths under a root directory.
type Walker struct {
	skip map[string]bool

	// Matches reports whether a file name is a scan candidate. Defaults
	// to Python sources plus requirements files.
	Matches func(name string) bool

	// Warn receives non-fatal problems encountered during the walk.
	Warn func(err error)
}

// New creates a walker with the default skip list plus any extra
// directory names.
func New(extraSkip ...string) *Walker {
	skip := make(map[string]bool, len(DefaultSkipDirs)+len(extraSkip))
	for _, d := range DefaultSkipDirs {
		skip[d] = true
	}
	for _, d := range extraSkip {
		skip[d] = true
	}
	return &Walker{
		skip:    skip,
		Matches: defaultMatch,
		Warn:    func(error) {},
	}
}

func defaultMatch(name string) bool {
	if strings.HasSuffix(name, ".py") {
		return true
	}
	return strings.HasPrefix(name, "requirements") && strings.HasSuffix(name, ".txt")
}

// Walk returns the candidate files under root in deterministic (sorted)
// traversal order. Unreadable directories produce a warning via Warn and
// are skipped. A root that is not a directory is an error.
func (w *Walker) Walk(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "stat %s", root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "not a directory: %s", root)
	}

	var files []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.Warn(errors.Wrap(errors.ErrCodeFileUnreadable, err, "skipping %s", path))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && w.skip[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		// WalkDir does not follow symlinked directories; symlinked files
		// are skipped too so a link cycle cannot reintroduce pruned trees.
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if w.Matches(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return files, nil
}
