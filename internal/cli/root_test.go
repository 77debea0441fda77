package cli

import (
	"testing"
)

func TestSyncCommandFlags(t *testing.T) {
	cmd := newSyncCmd()

	if cmd.Use != "sync [dir]" {
		t.Errorf("Use = %q", cmd.Use)
	}

	for _, name := range []string{"non-interactive", "include-venv", "overwrite", "dry-run", "no-cache", "refresh"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("sync should define --%s", name)
		}
	}
}

func TestScanCommandFlags(t *testing.T) {
	cmd := newScanCmd()

	for _, name := range []string{"include-venv", "no-cache", "refresh", "json"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("scan should define --%s", name)
		}
	}
	if cmd.Flags().Lookup("non-interactive") != nil {
		t.Error("scan is always non-interactive and should not define the flag")
	}
}

func TestCompletionCommandArgs(t *testing.T) {
	cmd := newCompletionCmd()

	if err := cmd.Args(cmd, []string{"bash"}); err != nil {
		t.Errorf("bash should be a valid completion arg: %v", err)
	}
	if err := cmd.Args(cmd, []string{"tcsh"}); err == nil {
		t.Error("tcsh should be rejected")
	}
}
