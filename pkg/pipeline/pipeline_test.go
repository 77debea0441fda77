package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/reqsmith/pkg/cache"
	"github.com/matzehuels/reqsmith/pkg/config"
	"github.com/matzehuels/reqsmith/pkg/errors"
	"github.com/matzehuels/reqsmith/pkg/poetry"
	"github.com/matzehuels/reqsmith/pkg/reconcile"
)

// scriptRunner fakes poetry invocations for pipeline tests.
type scriptRunner struct {
	calls []string
	fail  map[string]bool
}

func (s *scriptRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	key := name + " " + strings.Join(args, " ")
	s.calls = append(s.calls, key)
	if s.fail[key] {
		return "rejected", fmt.Errorf("exit status 1")
	}
	return "", nil
}

func (s *scriptRunner) adds() []string {
	var out []string
	for _, c := range s.calls {
		if strings.HasPrefix(c, "poetry add ") {
			out = append(out, strings.TrimPrefix(c, "poetry add "))
		}
	}
	return out
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func newTestRunner(t *testing.T, root string, script *scriptRunner, cfg *config.Config) *Runner {
	t.Helper()
	r := NewRunner(cache.NewNullCache(), cfg, nil)
	r.Poetry = poetry.NewClient(root, script)
	return r
}

func TestExecute_EndToEnd(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pyproject.toml": "[tool.poetry]\n",
		"app.py":         "import os\nimport requests\nimport flask\n",
		"worker.py":      "import requests\nimport celery\n",
		"requirements.txt": "flask==2.0.1\nredis>=4.0\n",
	})

	script := &scriptRunner{}
	r := newTestRunner(t, root, script, nil)

	result, err := r.Execute(context.Background(), Options{Root: root, NonInteractive: true})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	// app.py sorts before requirements.txt before worker.py: requests and
	// flask are first seen in app.py, flask picks up its pin from
	// requirements.txt, celery arrives last.
	wantAdds := []string{"requests", "flask==2.0.1", "redis>=4.0", "celery"}
	if got := script.adds(); len(got) != len(wantAdds) {
		t.Fatalf("adds = %v, want %v", got, wantAdds)
	} else {
		for i := range wantAdds {
			if got[i] != wantAdds[i] {
				t.Errorf("adds[%d] = %q, want %q", i, got[i], wantAdds[i])
			}
		}
	}

	if !result.Ok() {
		t.Error("Ok() = false, want true")
	}
	if result.Stats.FilesScanned != 3 {
		t.Errorf("FilesScanned = %d, want 3", result.Stats.FilesScanned)
	}
	if result.RunID == "" {
		t.Error("RunID must be set")
	}
}

func TestExecute_NoDuplicateAdds(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pyproject.toml": "[tool.poetry]\n",
		"a.py":           "import requests\n",
		"b.py":           "import requests\n",
		"requirements.txt": "requests\n",
	})

	script := &scriptRunner{}
	r := newTestRunner(t, root, script, nil)

	if _, err := r.Execute(context.Background(), Options{Root: root, NonInteractive: true}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if got := script.adds(); len(got) != 1 || got[0] != "requests" {
		t.Errorf("adds = %v, want exactly one requests", got)
	}
}

func TestExecute_PoetryMissing(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"pyproject.toml": ""})

	script := &scriptRunner{fail: map[string]bool{"poetry --version": true}}
	r := newTestRunner(t, root, script, nil)

	_, err := r.Execute(context.Background(), Options{Root: root, NonInteractive: true})
	if !errors.Is(err, errors.ErrCodePoetryMissing) {
		t.Errorf("Execute = %v, want POETRY_MISSING", err)
	}
}

func TestExecute_ManifestDeclined(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"app.py": "import requests\n"})

	script := &scriptRunner{}
	r := newTestRunner(t, root, script, nil)
	r.ConfirmInit = func(context.Context) bool { return false }

	_, err := r.Execute(context.Background(), Options{Root: root})
	if !errors.Is(err, errors.ErrCodeManifestMissing) {
		t.Errorf("Execute = %v, want MANIFEST_MISSING", err)
	}
}

func TestExecute_ManifestCreatedNonInteractive(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"app.py": "import requests\n"})

	script := &scriptRunner{}
	r := newTestRunner(t, root, script, nil)

	result, err := r.Execute(context.Background(), Options{Root: root, NonInteractive: true})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var sawInit bool
	for _, c := range script.calls {
		if c == "poetry init --no-interaction" {
			sawInit = true
		}
	}
	if !sawInit {
		t.Errorf("calls = %v, want poetry init", script.calls)
	}
	if len(result.Warnings) == 0 {
		t.Error("unconfirmed manifest creation should leave a warning")
	}
}

func TestExecute_AddFailureIsNotFatal(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pyproject.toml": "",
		"app.py":         "import nosuchpkg\nimport requests\n",
	})

	script := &scriptRunner{fail: map[string]bool{"poetry add nosuchpkg": true}}
	r := newTestRunner(t, root, script, nil)

	result, err := r.Execute(context.Background(), Options{Root: root, NonInteractive: true})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Ok() {
		t.Error("Ok() = true, want false")
	}
	if len(result.Write.Added) != 1 || result.Write.Added[0].Name != "requests" {
		t.Errorf("Added = %v, remaining adds must continue after a failure", result.Write.Added)
	}

	var sawWarning bool
	for _, w := range result.Warnings {
		if w.Stage == StageWrite && strings.Contains(w.Message, "nosuchpkg") {
			sawWarning = true
		}
	}
	if !sawWarning {
		t.Errorf("Warnings = %v, want a write warning for nosuchpkg", result.Warnings)
	}
}

func TestExecute_ConflictAutoResolvedWithWarning(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pyproject.toml":          "",
		"requirements.txt":        "requests>=2.0\n",
		"legacy/requirements.txt": "requests==1.9\n",
	})

	script := &scriptRunner{}
	r := newTestRunner(t, root, script, nil)

	result, err := r.Execute(context.Background(), Options{Root: root, NonInteractive: true})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	// Non-interactive default policy drops the constraint.
	if got := script.adds(); len(got) != 1 || got[0] != "requests" {
		t.Errorf("adds = %v, want [requests]", got)
	}

	var sawConflict bool
	for _, w := range result.Warnings {
		if w.Stage == StageReconcile && strings.Contains(w.Message, "requests") {
			sawConflict = true
		}
	}
	if !sawConflict {
		t.Errorf("Warnings = %v, want a reconcile warning for requests", result.Warnings)
	}
}

func TestExecute_InteractiveResolverDecides(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pyproject.toml":          "",
		"requirements.txt":        "requests>=2.0\n",
		"legacy/requirements.txt": "requests==1.9\n",
	})

	script := &scriptRunner{}
	r := newTestRunner(t, root, script, nil)
	var conflict reconcile.Conflict
	r.Resolver = reconcile.ResolverFunc(func(_ context.Context, c reconcile.Conflict) (reconcile.Decision, error) {
		conflict = c
		return reconcile.DecisionReplace, nil
	})

	_, err := r.Execute(context.Background(), Options{Root: root})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	// legacy/ walks before requirements.txt, so ==1.9 is first seen and
	// "use new" adopts >=2.0.
	if conflict.Existing.Spec != "==1.9" || conflict.Incoming.Spec != ">=2.0" {
		t.Errorf("conflict = %+v, want ==1.9 vs >=2.0", conflict)
	}
	if got := script.adds(); len(got) != 1 || got[0] != "requests>=2.0" {
		t.Errorf("adds = %v, want [requests>=2.0]", got)
	}
}

func TestExecute_IgnoreList(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pyproject.toml": "",
		"app.py":         "import requests\nimport internal_sdk\n",
	})

	cfg := config.Default()
	cfg.Ignore = []string{"Internal_SDK"}

	script := &scriptRunner{}
	r := newTestRunner(t, root, script, cfg)

	if _, err := r.Execute(context.Background(), Options{Root: root, NonInteractive: true}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if got := script.adds(); len(got) != 1 || got[0] != "requests" {
		t.Errorf("adds = %v, want [requests]", got)
	}
}

func TestExecute_DryRun(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pyproject.toml": "",
		"app.py":         "import requests\n",
	})

	script := &scriptRunner{}
	r := newTestRunner(t, root, script, nil)

	result, err := r.Execute(context.Background(), Options{Root: root, NonInteractive: true, DryRun: true})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if got := script.adds(); len(got) != 0 {
		t.Errorf("adds = %v, dry run must not add", got)
	}
	if len(result.Write.Added) != 1 {
		t.Errorf("Added = %v, dry run should report what would be added", result.Write.Added)
	}
}

func TestExtractFile_Cache(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pyproject.toml": "",
		"app.py":         "import requests\n",
	})

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	r := NewRunner(fc, nil, nil)
	r.Poetry = poetry.NewClient(root, &scriptRunner{})

	ctx := context.Background()
	first, _, err := r.Discover(ctx, Options{Root: root})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	// Second run hits the cache; resulting stream must be identical.
	second, _, err := r.Discover(ctx, Options{Root: root})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("cached run differs: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("requirement[%d] differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestExecute_CacheStats(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pyproject.toml":   "",
		"app.py":           "import requests\n",
		"requirements.txt": "flask==2.0.1\n",
	})

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	r := NewRunner(fc, nil, nil)
	r.Poetry = poetry.NewClient(root, &scriptRunner{})
	ctx := context.Background()

	first, err := r.Execute(ctx, Options{Root: root, NonInteractive: true})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if first.Stats.CacheHits != 0 || first.Stats.CacheMisses != 2 {
		t.Errorf("cold run: hits=%d misses=%d, want 0/2", first.Stats.CacheHits, first.Stats.CacheMisses)
	}

	second, err := r.Execute(ctx, Options{Root: root, NonInteractive: true})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if second.Stats.CacheHits != 2 || second.Stats.CacheMisses != 0 {
		t.Errorf("warm run: hits=%d misses=%d, want 2/0", second.Stats.CacheHits, second.Stats.CacheMisses)
	}

	// Refresh bypasses the cache entirely, counting neither way.
	refreshed, err := r.Execute(ctx, Options{Root: root, NonInteractive: true, Refresh: true})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if refreshed.Stats.CacheHits != 0 || refreshed.Stats.CacheMisses != 0 {
		t.Errorf("refresh run: hits=%d misses=%d, want 0/0", refreshed.Stats.CacheHits, refreshed.Stats.CacheMisses)
	}
}
