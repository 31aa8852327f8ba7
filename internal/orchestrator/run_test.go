package orchestrator

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/Iron-Ham/discourse/internal/config"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"Tabs vs spaces", "tabs-vs-spaces"},
		{"Should we use HTTP/3?", "should-we-use-http-3"},
		{"  Leading & trailing!  ", "leading-trailing"},
		{strings.Repeat("very long topic ", 20), "very-long-topic-very-long-topic-very-long-topic-very-long-to"},
	}
	for _, tt := range tests {
		got := slugify(tt.topic)
		if got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.topic, got, tt.want)
		}
		if len(got) > 60 {
			t.Errorf("slug %q exceeds 60 characters", got)
		}
	}
}

func TestPrepareRunDir(t *testing.T) {
	t.Run("creates timestamped directory with snapshot", func(t *testing.T) {
		base := t.TempDir()
		srcCfg := filepath.Join(t.TempDir(), "run.yaml")
		if err := os.WriteFile(srcCfg, []byte("topic: Tabs vs spaces\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg := config.Default()
		cfg.Topic = "Tabs vs spaces"
		cfg.SourcePath = srcCfg

		runDir, err := PrepareRunDir(cfg, base)
		if err != nil {
			t.Fatalf("PrepareRunDir returned error: %v", err)
		}

		name := filepath.Base(runDir)
		matched, _ := regexp.MatchString(`^\d{8}T\d{6}Z-tabs-vs-spaces$`, name)
		if !matched {
			t.Errorf("run dir name = %q, want <timestamp>-<slug>", name)
		}

		snapshot, err := os.ReadFile(filepath.Join(runDir, ConfigSnapshotName))
		if err != nil {
			t.Fatalf("config snapshot missing: %v", err)
		}
		if !strings.Contains(string(snapshot), "Tabs vs spaces") {
			t.Errorf("snapshot contents = %q", snapshot)
		}
	})

	t.Run("falls back to configured output dir", func(t *testing.T) {
		base := t.TempDir()
		cfg := config.Default()
		cfg.Topic = "T"
		cfg.OutputDir = base

		runDir, err := PrepareRunDir(cfg, "")
		if err != nil {
			t.Fatalf("PrepareRunDir returned error: %v", err)
		}
		if filepath.Dir(runDir) != base {
			t.Errorf("run dir %q not under configured output dir %q", runDir, base)
		}
	})
}
