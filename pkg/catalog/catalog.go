// Package catalog provides the static module catalog used during import
// extraction: the set of Python standard-library and built-in module names
// that never map to an installable distribution, and the rename table for
// import names whose distribution is published under a different name
// (e.g. cv2 -> opencv-python).
//
// A Catalog is immutable after construction. User-supplied renames are
// merged in at load time via Extend, which returns a new Catalog.
package catalog

import "strings"

// Catalog holds the built-in module names and the import-to-distribution
// rename table. The zero value is not usable; construct via Default or
// Extend.
type Catalog struct {
	builtins map[string]struct{}
	renames  map[string]string
}

// Default returns the catalog of Python standard-library modules and
// well-known import renames.
func Default() *Catalog {
	b := make(map[string]struct{}, len(stdlibModules))
	for _, m := range stdlibModules {
		b[m] = struct{}{}
	}
	r := make(map[string]string, len(importRenames))
	for k, v := range importRenames {
		r[k] = v
	}
	return &Catalog{builtins: b, renames: r}
}

// Extend returns a new catalog with extra renames added on top of c.
// Extra entries win over built-in entries with the same key. c is not
// modified.
func (c *Catalog) Extend(renames map[string]string) *Catalog {
	if len(renames) == 0 {
		return c
	}
	out := &Catalog{
		builtins: c.builtins,
		renames:  make(map[string]string, len(c.renames)+len(renames)),
	}
	for k, v := range c.renames {
		out.renames[k] = v
	}
	for k, v := range renames {
		out.renames[strings.ToLower(k)] = v
	}
	return out
}

// IsBuiltin reports whether name is a standard-library or built-in module.
// The comparison is case-sensitive: Python module names are.
func (c *Catalog) IsBuiltin(name string) bool {
	_, ok := c.builtins[name]
	return ok
}

// Rename maps an import name to its distribution name. The lookup covers
// both the bare top-level name (cv2) and dotted special cases (six.moves).
// Returns the input and false when no rename applies.
func (c *Catalog) Rename(name string) (string, bool) {
	if dist, ok := c.renames[strings.ToLower(name)]; ok {
		return dist, true
	}
	return name, false
}

// Len returns the number of built-in module names, mostly for tests.
func (c *Catalog) Len() int {
	return len(c.builtins)
}
