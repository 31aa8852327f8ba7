// Package orchestrator drives a full run: the debate variant alternates two
// participants over a shared transcript; the workshop variant loops an
// author and an editor over a git-versioned document until the editor
// approves. Both share one audited invocation core, so every turn attempt,
// failure, recovery choice, referee exchange, and check-in lands in the
// audit log regardless of mode.
package orchestrator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Iron-Ham/discourse/internal/config"
)

// ConfigSnapshotName is the copy of the run configuration kept inside the
// run directory for reproducibility.
const ConfigSnapshotName = "config.yaml"

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify reduces a topic to a filesystem-friendly slug, capped at 60
// characters.
func slugify(topic string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(topic), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 60 {
		slug = strings.Trim(slug[:60], "-")
	}
	return slug
}

// PrepareRunDir creates the run directory under the configured output
// directory, named by UTC timestamp and topic slug, and snapshots the
// config file into it. outputDir overrides cfg.OutputDir when non-empty.
func PrepareRunDir(cfg *config.Config, outputDir string) (string, error) {
	base := outputDir
	if base == "" {
		base = cfg.OutputDir
	}
	if err := os.MkdirAll(base, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().UTC().Format("20060102T150405Z")
	runDir := filepath.Join(base, fmt.Sprintf("%s-%s", timestamp, slugify(cfg.Topic)))
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}

	if cfg.SourcePath != "" {
		if err := copyFile(cfg.SourcePath, filepath.Join(runDir, ConfigSnapshotName)); err != nil {
			return "", fmt.Errorf("failed to snapshot config: %w", err)
		}
	}
	return runDir, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
