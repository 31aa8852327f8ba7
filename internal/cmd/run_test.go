package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfig = `topic: "Tabs vs spaces"
participants:
  a:
    name: Ada
    role: Argue for tabs.
  b:
    name: Grace
    role: Argue for spaces.
`

func TestRunDryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testConfig), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	rootCmd.SetArgs([]string{"run", path, "--dry-run"})
	defer rootCmd.SetArgs(nil)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("dry run returned error: %v", err)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("topic: ''\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	rootCmd.SetArgs([]string{"run", path, "--dry-run"})
	defer rootCmd.SetArgs(nil)
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected a validation error")
	}
}
