package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/reqsmith/pkg/pydeps"
)

func TestRenderScanTable(t *testing.T) {
	reqs := []pydeps.Requirement{
		{Name: "flask", Spec: "==2.0.1", Source: "requirements.txt"},
		{Name: "requests", Source: "app.py"},
	}

	out := renderScanTable(reqs)

	for _, want := range []string{"Package", "flask", "==2.0.1", "requests", "app.py"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q", want)
		}
	}
	// Unconstrained requirements render a placeholder, not an empty cell.
	if !strings.Contains(out, "—") {
		t.Error("table should mark unconstrained requirements")
	}
}

func TestRenderScanTableEmpty(t *testing.T) {
	out := renderScanTable(nil)
	if !strings.Contains(out, "Package") {
		t.Error("empty table should still render headers")
	}
}
