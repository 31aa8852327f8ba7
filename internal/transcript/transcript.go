package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the debate transcript file inside a run directory.
const FileName = "conversation.md"

// Transcript is the debate artifact: a turn-by-turn markdown record under a
// YAML frontmatter header.
type Transcript struct {
	path       string
	totalTurns int
}

// Closing is one participant's closing statement. An empty Text records
// that the statement was not produced.
type Closing struct {
	Name string
	Text string
}

// Create writes a fresh transcript into runDir with an active header and
// the topic heading. participants maps role keys to display names.
func Create(runDir, topic string, participants map[string]string) (*Transcript, error) {
	t := &Transcript{path: filepath.Join(runDir, FileName)}

	header := &Header{
		Topic:        topic,
		StartedAt:    nowUTC(),
		Status:       StatusActive,
		TotalTurns:   0,
		Participants: participants,
	}
	body := fmt.Sprintf("\n# Discourse: %s\n", topic)

	data, err := encodeDocument(header, body)
	if err != nil {
		return nil, err
	}
	if err := writeAndSync(t.path, data); err != nil {
		return nil, err
	}
	return t, nil
}

// Path returns the transcript file path.
func (t *Transcript) Path() string { return t.path }

// TotalTurns returns the highest turn number appended so far.
func (t *Transcript) TotalTurns() int { return t.totalTurns }

// Read returns the current file contents.
func (t *Transcript) Read() (string, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}
	return string(data), nil
}

// AppendTurn appends a turn section and bumps the header's total_turns to
// match. Skipped turns are appended the same way with their placeholder
// text, so turn numbers are never reused.
func (t *Transcript) AppendTurn(turn int, participantName, content string) error {
	section := fmt.Sprintf("\n\n## Turn %d - %s\n\n%s\n", turn, participantName, strings.TrimSpace(content))
	if err := appendAndSync(t.path, section); err != nil {
		return err
	}
	t.totalTurns = turn
	return updateHeader(t.path, func(h *Header) {
		h.TotalTurns = turn
	})
}

// AppendRefereeNote records a referee exchange as an HTML comment anchored
// to the turn it interrupted. Notes are annotations, not turns; they do not
// advance the turn count.
func (t *Transcript) AppendRefereeNote(turn int, note string) error {
	comment := fmt.Sprintf("\n\n<!-- REFEREE @ Turn %d: %s -->\n", turn, strings.TrimSpace(note))
	return appendAndSync(t.path, comment)
}

// Finalize appends the closing statements section and moves the header to
// its terminal status. A nil closings slice records that statements were
// not collected (interrupted or aborted runs).
func (t *Transcript) Finalize(status Status, closings []Closing) error {
	var sb strings.Builder
	sb.WriteString("\n\n---\n\n## Closing Statements\n")

	if len(closings) > 0 {
		for _, c := range closings {
			text := strings.TrimSpace(c.Text)
			if text == "" {
				text = "(no closing statement)"
			}
			sb.WriteString(fmt.Sprintf("\n### %s\n\n%s\n", c.Name, text))
		}
	} else {
		sb.WriteString("\n*(Closing statements were not collected.)*\n")
	}

	if err := appendAndSync(t.path, sb.String()); err != nil {
		return err
	}

	endedAt := nowUTC()
	return updateHeader(t.path, func(h *Header) {
		h.Status = status
		h.EndedAt = &endedAt
	})
}
