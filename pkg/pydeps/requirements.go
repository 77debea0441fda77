package pydeps

import (
	"bufio"
	"bytes"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/reqsmith/pkg/errors"
)

var reqNameRE = regexp.MustCompile(`^([a-zA-Z0-9][-a-zA-Z0-9._]*)`)

// specOperators introduce the version portion of a requirement line,
// ordered longest first so "===" wins over "==" and "==" over "=".
var specOperators = []string{"===", "==", ">=", "<=", "~=", "!=", ">", "<"}

// Requirements extracts requirements from pip requirements files.
// Version specifiers are carried through verbatim.
type Requirements struct{}

// NewRequirements creates a requirements file extractor.
func NewRequirements() *Requirements {
	return &Requirements{}
}

func (x *Requirements) Type() string { return "requirements" }

func (x *Requirements) Supports(name string) bool {
	return name == "requirements.txt" ||
		(strings.HasPrefix(name, "requirements") && strings.HasSuffix(name, ".txt"))
}

// Extract reads a requirements file. Blank lines, comments, pip flags
// (-r, -e, --hash), direct URLs and local paths are skipped. Environment
// markers and inline comments are stripped before the specifier is taken.
func (x *Requirements) Extract(path string) ([]Requirement, error) {
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
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '-' {
			continue
		}
		if strings.Contains(line, "://") || strings.HasPrefix(line, "git+") {
			continue
		}

		req, ok := parseRequirementLine(line, path)
		if !ok || seen[req.Name] {
			continue
		}
		seen[req.Name] = true
		result = append(result, req)
	}

	return result, scanner.Err()
}

// parseRequirementLine splits one requirement line into a name and an
// optional version specifier suffix.
func parseRequirementLine(line, source string) (Requirement, bool) {
	// Environment markers ("; python_version < ...") and inline comments
	// do not belong to the specifier.
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, " #"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)

	m := reqNameRE.FindStringSubmatch(line)
	if m == nil {
		return Requirement{}, false
	}
	raw := m[1]
	rest := strings.TrimSpace(line[len(raw):])

	// Extras (name[security]) select optional features of the same
	// distribution; the extras list is not part of the name.
	rest = strings.TrimSpace(strings.TrimPrefix(rest, extrasSuffix(rest)))

	var spec string
	for _, op := range specOperators {
		if strings.HasPrefix(rest, op) {
			spec = strings.TrimSpace(rest)
			break
		}
	}

	return Requirement{
		Name:    Normalize(raw),
		RawName: raw,
		Spec:    spec,
		Source:  source,
	}, true
}

// extrasSuffix returns the leading "[...]" extras group of rest, if any.
func extrasSuffix(rest string) string {
	if !strings.HasPrefix(rest, "[") {
		return ""
	}
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return ""
	}
	return rest[:end+1]
}
