package document

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func TestCreate(t *testing.T) {
	requireGit(t)

	t.Run("empty document starts with topic heading", func(t *testing.T) {
		dir := t.TempDir()
		d, err := Create(dir, Options{Topic: "Style guide"})
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}

		content, err := d.Read()
		if err != nil {
			t.Fatalf("Read returned error: %v", err)
		}
		if content != "# Style guide\n" {
			t.Errorf("initial content = %q", content)
		}

		msg, err := d.git.headMessage()
		if err != nil {
			t.Fatalf("headMessage returned error: %v", err)
		}
		if msg != "Initialize empty document" {
			t.Errorf("initial commit message = %q", msg)
		}
	})

	t.Run("seeded from source file", func(t *testing.T) {
		seed := filepath.Join(t.TempDir(), "draft.md")
		if err := os.WriteFile(seed, []byte("# Existing draft\n\nSome text.\n"), 0644); err != nil {
			t.Fatalf("failed to write seed: %v", err)
		}

		d, err := Create(t.TempDir(), Options{Topic: "ignored", SourceFile: seed})
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}

		content, _ := d.Read()
		if !strings.Contains(content, "Existing draft") {
			t.Errorf("seeded content = %q", content)
		}
		msg, _ := d.git.headMessage()
		if msg != "Initialize document from source file" {
			t.Errorf("initial commit message = %q", msg)
		}
	})

	t.Run("missing source file is an error", func(t *testing.T) {
		_, err := Create(t.TempDir(), Options{SourceFile: "/nonexistent/seed.md"})
		if err == nil {
			t.Fatal("expected an error for a missing source file")
		}
	})
}

func TestWrite(t *testing.T) {
	requireGit(t)

	t.Run("every write pairs with one commit", func(t *testing.T) {
		d, err := Create(t.TempDir(), Options{Topic: "T"})
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}

		if err := d.Write("# T\n\nFirst revision.", 1); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}
		if err := d.Write("# T\n\nSecond revision.", 3); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}

		count, err := d.git.commitCount()
		if err != nil {
			t.Fatalf("commitCount returned error: %v", err)
		}
		if count != "3" {
			t.Errorf("commit count = %s, want 3 (init + 2 revisions)", count)
		}

		msg, _ := d.git.headMessage()
		if msg != "Author revision — turn 3" {
			t.Errorf("head commit message = %q", msg)
		}

		content, _ := d.Read()
		if content != "# T\n\nSecond revision.\n" {
			t.Errorf("content = %q", content)
		}
	})

	t.Run("identical content still commits", func(t *testing.T) {
		d, err := Create(t.TempDir(), Options{Topic: "T"})
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if err := d.Write("same", 1); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}
		if err := d.Write("same", 3); err != nil {
			t.Fatalf("Write of identical content returned error: %v", err)
		}
		count, _ := d.git.commitCount()
		if count != "3" {
			t.Errorf("commit count = %s, want 3", count)
		}
	})

	t.Run("editorial log is staged alongside the document", func(t *testing.T) {
		dir := t.TempDir()
		d, err := Create(dir, Options{Topic: "T"})
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "editorial-log.md"), []byte("log\n"), 0644); err != nil {
			t.Fatalf("failed to write editorial log: %v", err)
		}
		if err := d.Write("revised", 1); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}

		out, err := d.git.run("show", "--stat", "--name-only", "HEAD")
		if err != nil {
			t.Fatalf("git show returned error: %v", err)
		}
		if !strings.Contains(out, "editorial-log.md") {
			t.Errorf("editorial log not in head commit:\n%s", out)
		}
	})
}
