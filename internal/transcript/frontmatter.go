// Package transcript produces the human-readable run artifacts: the debate
// transcript (conversation.md) and the workshop editorial log
// (editorial-log.md). Both are markdown bodies that grow append-only under a
// mutable YAML frontmatter header tracking status, turn count, and
// timestamps. Every mutation is flushed to disk before it returns.
package transcript

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Status is the lifecycle state recorded in an artifact header. It moves
// from active to exactly one terminal value and never transitions again.
type Status string

const (
	StatusActive      Status = "active"
	StatusCompleted   Status = "completed"
	StatusInterrupted Status = "interrupted"
	StatusAborted     Status = "aborted"
)

// Header is the YAML frontmatter block of a run artifact. EndedAt is a
// pointer so an unfinished run renders as `ended_at: null`.
type Header struct {
	Topic        string            `yaml:"topic"`
	Brief        string            `yaml:"brief,omitempty"`
	StartedAt    string            `yaml:"started_at"`
	EndedAt      *string           `yaml:"ended_at"`
	Status       Status            `yaml:"status"`
	TotalTurns   int               `yaml:"total_turns"`
	Participants map[string]string `yaml:"participants,omitempty"`
}

const frontmatterDelimiter = "---\n"

// encodeDocument renders a header plus body into full file contents.
func encodeDocument(h *Header, body string) ([]byte, error) {
	fm, err := yaml.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	var sb strings.Builder
	sb.WriteString(frontmatterDelimiter)
	sb.Write(fm)
	sb.WriteString(frontmatterDelimiter)
	sb.WriteString(body)
	return []byte(sb.String()), nil
}

// splitDocument separates file contents into the frontmatter header and the
// markdown body that follows it.
func splitDocument(data []byte) (*Header, string, error) {
	text := string(data)
	if !strings.HasPrefix(text, frontmatterDelimiter) {
		return nil, "", fmt.Errorf("artifact has no frontmatter header")
	}
	rest := text[len(frontmatterDelimiter):]
	end := strings.Index(rest, frontmatterDelimiter)
	if end < 0 {
		return nil, "", fmt.Errorf("artifact frontmatter is unterminated")
	}

	var h Header
	if err := yaml.Unmarshal([]byte(rest[:end]), &h); err != nil {
		return nil, "", fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	return &h, rest[end+len(frontmatterDelimiter):], nil
}

// updateHeader reads an artifact, applies mutate to its header, and rewrites
// the file with the body untouched.
func updateHeader(path string, mutate func(*Header)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read artifact: %w", err)
	}
	h, body, err := splitDocument(data)
	if err != nil {
		return err
	}

	mutate(h)

	out, err := encodeDocument(h, body)
	if err != nil {
		return err
	}
	return writeAndSync(path, out)
}

// nowUTC returns the current time formatted the way artifact headers record
// timestamps.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// writeAndSync replaces a file's contents and flushes them to disk.
func writeAndSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open artifact for writing: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync artifact: %w", err)
	}
	return f.Close()
}

// appendAndSync appends text to an existing file and flushes it to disk.
func appendAndSync(path, text string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open artifact for append: %w", err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to artifact: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync artifact: %w", err)
	}
	return f.Close()
}
