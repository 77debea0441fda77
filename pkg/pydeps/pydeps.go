// Package pydeps extracts third-party requirements from Python project
// files. Two extractors are provided: one for Python source files, which
// derives requirements from import statements using the module catalog,
// and one for pip requirements files, which carries version specifiers
// through verbatim.
//
// Extraction is best-effort, line-oriented text analysis. It does not
// parse Python and does not try to understand conditional or guarded
// imports; any import statement at any nesting depth counts.
package pydeps

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Requirement is a single dependency candidate discovered in one file.
// Name is the PEP 503 normalized distribution name used for comparison;
// RawName keeps the original casing for display. Spec is the version
// specifier suffix ("==2.0.1", ">=1.4,<2") or empty when unconstrained.
// A Requirement is immutable once created.
type Requirement struct {
	Name    string // normalized distribution name
	RawName string // original casing as found in the source
	Spec    string // version specifier, empty if unconstrained
	Source  string // file the requirement came from
}

// Constrained reports whether the requirement carries a version specifier.
func (r Requirement) Constrained() bool {
	return r.Spec != ""
}

// String renders the requirement the way poetry add expects it.
func (r Requirement) String() string {
	if r.Spec == "" {
		return r.RawName
	}
	return r.RawName + r.Spec
}

// Normalize converts a package name to its canonical form. Applies
// lowercase and replaces underscores and dots with hyphens, following
// PEP 503 normalization rules used by PyPI.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "_", "-")
	return strings.ReplaceAll(s, ".", "-")
}

// Extractor reads requirement candidates from one project file.
type Extractor interface {
	// Extract reads the file at path and returns the requirements found.
	Extract(path string) ([]Requirement, error)
	// Supports reports whether this extractor handles the given filename.
	Supports(filename string) bool
	// Type returns the extractor identifier (e.g. "python", "requirements").
	Type() string
}

// Detect finds an extractor that supports the given file path.
// Returns an error if no extractor matches.
func Detect(path string, extractors ...Extractor) (Extractor, error) {
	name := filepath.Base(path)
	for _, e := range extractors {
		if e.Supports(name) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("unsupported file: %s", name)
}
