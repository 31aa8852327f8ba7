package orchestrator

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Iron-Ham/discourse/internal/ai"
	"github.com/Iron-Ham/discourse/internal/audit"
	"github.com/Iron-Ham/discourse/internal/config"
	"github.com/Iron-Ham/discourse/internal/console"
	"github.com/Iron-Ham/discourse/internal/session"
)

// fakeResponse is one scripted backend reply.
type fakeResponse struct {
	text      string
	sessionID string
	err       error
	// cancelCtx cancels the run context before replying, simulating an
	// interrupt arriving mid-invocation.
	cancelCtx bool
}

// fakeInvoker replays scripted responses and records every request.
type fakeInvoker struct {
	responses []fakeResponse
	calls     []ai.Request
	cancel    context.CancelFunc
}

func (f *fakeInvoker) Invoke(ctx context.Context, req ai.Request) (*ai.Result, error) {
	f.calls = append(f.calls, req)
	if len(f.responses) == 0 {
		panic(fmt.Sprintf("fakeInvoker: unexpected call %d with prompt %q", len(f.calls), req.Prompt))
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]

	if resp.cancelCtx {
		f.cancel()
		return nil, ctx.Err()
	}
	if resp.err != nil {
		return nil, resp.err
	}

	sessionID := resp.sessionID
	if sessionID == "" {
		sessionID = req.SessionID
	}
	if sessionID == "" {
		sessionID = fmt.Sprintf("session-%d", len(f.calls))
	}
	return &ai.Result{Text: resp.text, SessionID: sessionID}, nil
}

func debateConfig(maxTurns, checkInInterval int) *config.Config {
	cfg := config.Default()
	cfg.Topic = "Tabs vs spaces"
	cfg.MaxTurns = maxTurns
	cfg.CheckInInterval = checkInInterval
	cfg.Participants = map[string]config.Participant{
		"a": {Name: "Ada", Role: "Argue for tabs."},
		"b": {Name: "Grace", Role: "Argue for spaces."},
	}
	return cfg
}

func workshopConfig(maxTurns, checkInInterval int) *config.Config {
	cfg := config.Default()
	cfg.Topic = "Style guide"
	cfg.Mode = config.ModeWorkshop
	cfg.Brief = "Write a one-page style guide."
	cfg.MaxTurns = maxTurns
	cfg.CheckInInterval = checkInInterval
	cfg.Participants = map[string]config.Participant{
		"author": {Name: "Ada", Role: "Technical writer."},
		"editor": {Name: "Grace", Role: "Senior editor."},
	}
	return cfg
}

// newTestOptions builds Options over a temp run directory.
func newTestOptions(t *testing.T, cfg *config.Config, invoker ai.Invoker, ui console.Interactor) Options {
	t.Helper()
	runDir := t.TempDir()

	sessions, err := session.NewRegistry(runDir)
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}
	auditLog, err := audit.Open(runDir)
	if err != nil {
		t.Fatalf("audit.Open returned error: %v", err)
	}
	t.Cleanup(func() { auditLog.Close() })

	return Options{
		Config:   cfg,
		Invoker:  invoker,
		Sessions: sessions,
		Audit:    auditLog,
		UI:       ui,
		RunDir:   runDir,
	}
}

// readAudit returns all audit records from a run directory.
func readAudit(t *testing.T, runDir string) []map[string]any {
	t.Helper()

	f, err := os.Open(filepath.Join(runDir, audit.FileName))
	if err != nil {
		t.Fatalf("failed to open audit log: %v", err)
	}
	defer f.Close()

	var records []map[string]any
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		var record map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("invalid audit line %q: %v", scanner.Text(), err)
		}
		records = append(records, record)
	}
	return records
}

// auditTypes extracts the type sequence from audit records.
func auditTypes(records []map[string]any) []string {
	types := make([]string, len(records))
	for i, r := range records {
		types[i], _ = r["type"].(string)
	}
	return types
}

// readSessions returns the persisted session registry contents.
func readSessions(t *testing.T, runDir string) map[string]string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(runDir, session.RegistryFileName))
	if err != nil {
		t.Fatalf("failed to read sessions.json: %v", err)
	}
	var ids map[string]string
	if err := json.Unmarshal(data, &ids); err != nil {
		t.Fatalf("sessions.json is not valid JSON: %v", err)
	}
	return ids
}
