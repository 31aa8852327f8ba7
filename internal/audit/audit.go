// Package audit writes the append-only JSONL audit log for a run.
//
// Every meaningful state transition produces exactly one record: session
// start and end, turn starts, invocation outcomes, errors with the human's
// recovery choice, referee exchanges, and check-in decisions. Each record is
// stamped with a UTC timestamp at write time and fsync'd before the next
// turn begins, so the log is the ground truth of what happened even if the
// transcript was later hand-edited. Records are never rewritten.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Iron-Ham/discourse/internal/ai"
)

// FileName is the audit log file inside a run directory.
const FileName = "audit.jsonl"

// Record event types.
const (
	TypeSessionStart = "session_start"
	TypeTurnStart    = "turn_start"
	TypeInvoke       = "invoke"
	TypeError        = "error"
	TypeReferee      = "referee"
	TypeCheckIn      = "check_in"
	TypeSessionEnd   = "session_end"
)

// Log appends audit records to a run's audit.jsonl. It is not safe for
// concurrent use; the orchestrator is single-threaded by design.
type Log struct {
	file *os.File
}

// Open opens (or creates) the audit log inside runDir in append mode.
func Open(runDir string) (*Log, error) {
	f, err := os.OpenFile(filepath.Join(runDir, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return &Log{file: f}, nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	return l.file.Close()
}

// write marshals a record, stamps it, appends it, and flushes to disk.
func (l *Log) write(record map[string]any) error {
	record["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode audit record: %w", err)
	}
	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync audit log: %w", err)
	}
	return nil
}

// ParticipantInfo is the participant description recorded at session start.
type ParticipantInfo struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// SessionStart records the beginning of a run.
func (l *Log) SessionStart(mode, topic string, participants map[string]ParticipantInfo, config map[string]any) error {
	record := map[string]any{
		"type":         TypeSessionStart,
		"mode":         mode,
		"topic":        topic,
		"participants": participants,
	}
	if len(config) > 0 {
		record["config"] = config
	}
	return l.write(record)
}

// TurnStart records that a turn is about to be attempted.
func (l *Log) TurnStart(turn int, participantKey, participantName string) error {
	return l.write(map[string]any{
		"type":             TypeTurnStart,
		"turn":             turn,
		"participant":      participantKey,
		"participant_name": participantName,
	})
}

// Invoke records a successful backend invocation with its full prompt,
// optional system prompt, and every metric the backend reported. Absent
// metrics are recorded as null, never zero.
func (l *Log) Invoke(turn int, participantKey string, res *ai.Result, prompt, systemPrompt string, isNewSession bool) error {
	record := map[string]any{
		"type":                  TypeInvoke,
		"turn":                  turn,
		"participant":           participantKey,
		"session_id":            res.SessionID,
		"is_new_session":        isNewSession,
		"model":                 orNil(res.Metrics.Model),
		"input_tokens":          res.Metrics.InputTokens,
		"output_tokens":         res.Metrics.OutputTokens,
		"cache_read_tokens":     res.Metrics.CacheReadTokens,
		"cache_creation_tokens": res.Metrics.CacheCreationTokens,
		"duration_ms":           res.Metrics.DurationMS,
		"duration_api_ms":       res.Metrics.DurationAPIMS,
		"wall_clock_ms":         res.WallClock.Milliseconds(),
		"cost_usd":              res.Metrics.CostUSD,
		"num_turns":             res.Metrics.NumTurns,
		"is_error":              res.IsError,
		"response_length":       len(res.Text),
		"prompt":                prompt,
	}
	if systemPrompt != "" {
		record["system_prompt"] = systemPrompt
	}
	return l.write(record)
}

// Error records a failed invocation together with the recovery choice the
// human made. Written before the recovery action executes.
func (l *Log) Error(turn int, participantKey, participantName string, invokeErr error, userAction string) error {
	return l.write(map[string]any{
		"type":             TypeError,
		"turn":             turn,
		"participant":      participantKey,
		"participant_name": participantName,
		"error_type":       fmt.Sprintf("%T", invokeErr),
		"error_message":    invokeErr.Error(),
		"user_action":      userAction,
	})
}

// Referee records a referee question and the human's answer.
func (l *Log) Referee(turn int, question, answer string) error {
	return l.write(map[string]any{
		"type":     TypeReferee,
		"turn":     turn,
		"question": question,
		"answer":   answer,
	})
}

// CheckIn records a scheduled check-in decision.
func (l *Log) CheckIn(turn int, choice, message string) error {
	record := map[string]any{
		"type":   TypeCheckIn,
		"turn":   turn,
		"choice": choice,
	}
	if message != "" {
		record["message"] = message
	}
	return l.write(record)
}

// SessionEnd records the terminal status and final turn count.
func (l *Log) SessionEnd(status string, totalTurns int) error {
	return l.write(map[string]any{
		"type":        TypeSessionEnd,
		"status":      status,
		"total_turns": totalTurns,
	})
}

// orNil maps an empty string to null so "unknown" is distinguishable in the
// log.
func orNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
