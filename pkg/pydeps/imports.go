package pydeps

import (
	"bufio"
	"bytes"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/reqsmith/pkg/catalog"
	"github.com/matzehuels/reqsmith/pkg/errors"
)

var (
	importRE = regexp.MustCompile(`^\s*import\s+(.+)`)
	fromRE   = regexp.MustCompile(`^\s*from\s+([A-Za-z_][\w.]*)\s+import\b`)
	moduleRE = regexp.MustCompile(`^[A-Za-z_][\w.]*$`)
)

// Imports extracts requirements from Python source files by scanning
// import statements. Standard-library modules are dropped and known
// import renames are applied via the catalog. Requirements produced
// here never carry a version specifier.
type Imports struct {
	Catalog *catalog.Catalog
}

// NewImports creates a Python source extractor backed by cat.
func NewImports(cat *catalog.Catalog) *Imports {
	return &Imports{Catalog: cat}
}

func (x *Imports) Type() string { return "python" }

func (x *Imports) Supports(name string) bool {
	return strings.HasSuffix(name, ".py")
}

// Extract scans path line by line for import statements. Imports at any
// indentation depth count; relative imports (from . import x) are skipped
// because they carry no top-level module token. Files that are not valid
// UTF-8 text yield a FILE_UNREADABLE error.
func (x *Imports) Extract(path string) ([]Requirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileUnreadable, err, "read %s", path)
	}
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return nil, errors.New(errors.ErrCodeFileUnreadable, "not a text file: %s", path)
	}

	seen := make(map[string]bool)
	var result []Requirement

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		for _, mod := range importedModules(line) {
			req, ok := x.requirement(mod, path)
			if !ok || seen[req.Name] {
				continue
			}
			seen[req.Name] = true
			result = append(result, req)
		}
	}

	return result, scanner.Err()
}

// requirement maps a dotted module path to a requirement, or reports
// false when the module is satisfied by the standard library.
func (x *Imports) requirement(module, source string) (Requirement, bool) {
	top := module
	if i := strings.IndexByte(module, '.'); i >= 0 {
		top = module[:i]
	}
	if x.Catalog.IsBuiltin(top) {
		return Requirement{}, false
	}

	// Dotted special cases (six.moves) take precedence over the bare
	// top-level name.
	name, renamed := x.Catalog.Rename(module)
	if !renamed {
		name, _ = x.Catalog.Rename(top)
	}

	return Requirement{
		Name:    Normalize(name),
		RawName: name,
		Source:  source,
	}, true
}

// importedModules returns the dotted module paths referenced by a single
// source line, or nil when the line is not an import statement.
func importedModules(line string) []string {
	if m := fromRE.FindStringSubmatch(line); m != nil {
		return []string{m[1]}
	}

	m := importRE.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	rest := m[1]
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest = rest[:i]
	}

	// import a.b, c as d
	var mods []string
	for _, part := range strings.Split(rest, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		mod := fields[0]
		if !moduleRE.MatchString(mod) {
			continue
		}
		mods = append(mods, mod)
	}
	return mods
}
