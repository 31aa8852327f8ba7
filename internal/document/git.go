package document

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Commit identity used for workshop revision history. Configured per-repo
// so commits work without global git configuration.
const (
	gitUserName  = "Discourse Workshop"
	gitUserEmail = "workshop@discourse.local"
)

// gitRepo shells out to git for the run directory's revision history.
type gitRepo struct {
	dir string
}

func newGitRepo(dir string) *gitRepo {
	return &gitRepo{dir: dir}
}

// run executes a git command in the repository directory.
func (g *gitRepo) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = g.dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

// init creates the repository if the directory is not already one and sets
// the local commit identity.
func (g *gitRepo) init() error {
	if _, err := os.Stat(filepath.Join(g.dir, ".git")); err == nil {
		return nil
	}
	if _, err := g.run("init"); err != nil {
		return err
	}
	if _, err := g.run("config", "user.name", gitUserName); err != nil {
		return err
	}
	if _, err := g.run("config", "user.email", gitUserEmail); err != nil {
		return err
	}
	return nil
}

func (g *gitRepo) add(path string) error {
	_, err := g.run("add", path)
	return err
}

// commit records a commit, allowing empty ones so every document write maps
// to exactly one commit even when the content did not change.
func (g *gitRepo) commit(message string) error {
	_, err := g.run("commit", "-m", message, "--allow-empty")
	return err
}

// headMessage returns the subject line of the latest commit.
func (g *gitRepo) headMessage() (string, error) {
	return g.run("log", "-1", "--pretty=%s")
}

// commitCount returns the number of commits in the history.
func (g *gitRepo) commitCount() (string, error) {
	return g.run("rev-list", "--count", "HEAD")
}
