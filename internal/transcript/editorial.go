package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EditorialFileName is the workshop feedback log inside a run directory.
const EditorialFileName = "editorial-log.md"

// EditorialLog is the workshop artifact recording editor feedback round by
// round. Author revisions live in the document itself; the log carries the
// review history, referee exchanges, and any skipped rounds.
type EditorialLog struct {
	path       string
	totalTurns int
}

// CreateEditorialLog writes a fresh editorial log into runDir with an
// active header carrying the topic and brief.
func CreateEditorialLog(runDir, topic, brief string) (*EditorialLog, error) {
	l := &EditorialLog{path: filepath.Join(runDir, EditorialFileName)}

	header := &Header{
		Topic:      topic,
		Brief:      brief,
		StartedAt:  nowUTC(),
		Status:     StatusActive,
		TotalTurns: 0,
	}
	body := fmt.Sprintf("\n# Editorial Log: %s\n", topic)

	data, err := encodeDocument(header, body)
	if err != nil {
		return nil, err
	}
	if err := writeAndSync(l.path, data); err != nil {
		return nil, err
	}
	return l, nil
}

// Path returns the editorial log file path.
func (l *EditorialLog) Path() string { return l.path }

// TotalTurns returns the highest turn number recorded so far.
func (l *EditorialLog) TotalTurns() int { return l.totalTurns }

// Read returns the current file contents.
func (l *EditorialLog) Read() (string, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return "", fmt.Errorf("failed to read editorial log: %w", err)
	}
	return string(data), nil
}

// AppendFeedback records one editor review round and bumps total_turns.
func (l *EditorialLog) AppendFeedback(turn int, editorName, feedback string) error {
	section := fmt.Sprintf("\n\n## Turn %d — %s Review\n\n%s\n", turn, editorName, strings.TrimSpace(feedback))
	if err := appendAndSync(l.path, section); err != nil {
		return err
	}
	l.totalTurns = turn
	return updateHeader(l.path, func(h *Header) {
		h.TotalTurns = turn
	})
}

// AppendSkippedTurn records a turn whose contribution was skipped after a
// failed invocation. The turn number is consumed so the sequence stays
// gapless, and total_turns advances to match.
func (l *EditorialLog) AppendSkippedTurn(turn int, participantName, placeholder string) error {
	section := fmt.Sprintf("\n\n## Turn %d — %s (skipped)\n\n%s\n", turn, participantName, strings.TrimSpace(placeholder))
	if err := appendAndSync(l.path, section); err != nil {
		return err
	}
	l.totalTurns = turn
	return updateHeader(l.path, func(h *Header) {
		h.TotalTurns = turn
	})
}

// AppendRefereeNote records a referee exchange as a blockquote annotation.
func (l *EditorialLog) AppendRefereeNote(turn int, note string) error {
	quote := fmt.Sprintf("\n\n> **Referee @ Turn %d:** %s\n", turn, strings.TrimSpace(note))
	return appendAndSync(l.path, quote)
}

// Finalize moves the header to its terminal status and records the final
// turn count, which in workshop mode may exceed the last review round when
// the closing author revision was the final contribution.
func (l *EditorialLog) Finalize(status Status, totalTurns int) error {
	endedAt := nowUTC()
	l.totalTurns = totalTurns
	return updateHeader(l.path, func(h *Header) {
		h.Status = status
		h.EndedAt = &endedAt
		h.TotalTurns = totalTurns
	})
}
