// Package document manages the workshop document and its git-backed
// revision history. Every write replaces the full contents and is paired
// with exactly one commit, so `git log` inside the run directory is the
// complete revision history of the piece.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the workshop document inside a run directory.
const FileName = "document.md"

// Document is the single mutable artifact of a workshop run.
type Document struct {
	runDir string
	path   string
	git    *gitRepo
}

// Options configures document creation.
type Options struct {
	// Topic becomes the initial heading when no source file is given.
	Topic string
	// SourceFile optionally seeds the document from an existing file.
	SourceFile string
}

// Create initializes the run directory as a git repository and writes the
// initial document, either seeded from a source file or as a bare topic
// heading. The initial state is committed immediately.
func Create(runDir string, opts Options) (*Document, error) {
	d := &Document{
		runDir: runDir,
		path:   filepath.Join(runDir, FileName),
		git:    newGitRepo(runDir),
	}

	if err := d.git.init(); err != nil {
		return nil, err
	}

	if opts.SourceFile != "" {
		seed, err := os.ReadFile(opts.SourceFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read source file: %w", err)
		}
		if err := writeAndSync(d.path, seed); err != nil {
			return nil, err
		}
		if err := d.commit("Initialize document from source file"); err != nil {
			return nil, err
		}
	} else {
		initial := fmt.Sprintf("# %s\n", opts.Topic)
		if err := writeAndSync(d.path, []byte(initial)); err != nil {
			return nil, err
		}
		if err := d.commit("Initialize empty document"); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Path returns the document file path.
func (d *Document) Path() string { return d.path }

// Read returns the current document contents.
func (d *Document) Read() (string, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return string(data), nil
}

// Write replaces the document contents with an author revision and commits
// the result, tagged with the turn that produced it.
func (d *Document) Write(content string, turn int) error {
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := writeAndSync(d.path, []byte(content)); err != nil {
		return err
	}
	return d.commit(fmt.Sprintf("Author revision — turn %d", turn))
}

// commit stages the document (and the editorial log when present) and
// records a commit. Empty commits are allowed so a no-op revision still
// leaves its mark in the history.
func (d *Document) commit(message string) error {
	if err := d.git.add(FileName); err != nil {
		return err
	}
	logPath := filepath.Join(d.runDir, "editorial-log.md")
	if _, err := os.Stat(logPath); err == nil {
		// Best effort; the log may be mid-rewrite.
		_ = d.git.add("editorial-log.md")
	}
	return d.git.commit(message)
}

// writeAndSync replaces a file's contents and flushes them to disk.
func writeAndSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open document for writing: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync document: %w", err)
	}
	return f.Close()
}
