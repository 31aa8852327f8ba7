package ai

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/discourse/internal/errors"
	"github.com/Iron-Ham/discourse/internal/logging"
)

// Request describes one invocation of the backend CLI.
type Request struct {
	// Prompt is the user-turn text sent to the backend.
	Prompt string
	// SessionID resumes an existing conversation when non-empty. When empty
	// a fresh session is created with a generated UUID.
	SessionID string
	// SystemPrompt is attached only when a new session is created; resumed
	// sessions keep the system prompt they were started with.
	SystemPrompt string
}

// Result is a parsed backend reply.
type Result struct {
	// Text is the assistant's reply.
	Text string
	// SessionID is the effective session after this invocation. It may
	// differ from the requested one when the CLI reassigns it.
	SessionID string
	// Events is the raw decoded event list, kept for auditing.
	Events []Event
	// Metrics holds optional token, duration, and cost figures.
	Metrics Metrics
	// IsError is the result event's error flag.
	IsError bool
	// WallClock is the end-to-end subprocess duration as observed here,
	// independent of the CLI's self-reported durations.
	WallClock time.Duration
}

// Metrics are the optional usage figures reported by the CLI. Nil means the
// backend did not report the figure.
type Metrics struct {
	Model               string
	InputTokens         *int64
	OutputTokens        *int64
	CacheReadTokens     *int64
	CacheCreationTokens *int64
	DurationMS          *int64
	DurationAPIMS       *int64
	CostUSD             *float64
	NumTurns            *int
}

// Invoker sends prompts to an agent backend and returns parsed replies.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (*Result, error)
}

// CLIInvoker implements Invoker by shelling out to the claude CLI.
type CLIInvoker struct {
	// Command is the backend executable (default "claude").
	Command string
	// PermissionMode is passed as --permission-mode.
	PermissionMode string
	// Timeout bounds each invocation. Zero means no timeout.
	Timeout time.Duration
	// DumpDir receives raw output dumps when the CLI emits unparseable
	// JSON (default ".discourse-debug").
	DumpDir string
	// Logger receives per-invocation debug entries. Nil disables logging.
	Logger *logging.Logger

	// newSessionID generates IDs for fresh sessions; overridable in tests.
	newSessionID func() string
}

// NewCLIInvoker builds a CLIInvoker with the given command and settings.
func NewCLIInvoker(command, permissionMode string, timeout time.Duration, logger *logging.Logger) *CLIInvoker {
	if command == "" {
		command = "claude"
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &CLIInvoker{
		Command:        command,
		PermissionMode: permissionMode,
		Timeout:        timeout,
		DumpDir:        ".discourse-debug",
		Logger:         logger,
		newSessionID:   uuid.NewString,
	}
}

// buildArgs assembles the CLI argument list and returns it along with the
// session ID in effect and whether this call creates a new session.
func (inv *CLIInvoker) buildArgs(req Request) (args []string, sessionID string, isNew bool) {
	args = []string{"-p", "--output-format", "json"}

	sessionID = req.SessionID
	if sessionID != "" {
		args = append(args, "--resume", sessionID)
	} else {
		isNew = true
		sessionID = inv.generateSessionID()
		args = append(args, "--session-id", sessionID)
		if req.SystemPrompt != "" {
			args = append(args, "--system-prompt", req.SystemPrompt)
		}
	}

	if inv.PermissionMode != "" {
		args = append(args, "--permission-mode", inv.PermissionMode)
	}
	args = append(args, req.Prompt)
	return args, sessionID, isNew
}

func (inv *CLIInvoker) generateSessionID() string {
	if inv.newSessionID != nil {
		return inv.newSessionID()
	}
	return uuid.NewString()
}

// Invoke runs one backend invocation. Timeouts surface as TimeoutError,
// non-zero exits and error results as BackendError, and unparseable output
// as MalformedOutputError with the raw output dumped to DumpDir. Parent
// context cancellation is returned unchanged so callers can distinguish an
// interrupt from a turn failure.
func (inv *CLIInvoker) Invoke(ctx context.Context, req Request) (*Result, error) {
	args, sessionID, isNew := inv.buildArgs(req)

	runCtx := ctx
	var cancel context.CancelFunc
	if inv.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	inv.Logger.Debug("invoking backend",
		"command", inv.Command,
		"session_id", sessionID,
		"new_session", isNew,
		"prompt_length", len(req.Prompt),
	)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, inv.Command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	err := cmd.Run()
	wallClock := time.Since(started)

	if err != nil {
		if ctx.Err() != nil {
			// The parent was cancelled (interrupt), not a turn failure.
			return nil, ctx.Err()
		}
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, &errors.TimeoutError{
				Operation: "claude invocation",
				Duration:  inv.Timeout,
			}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &errors.BackendError{
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		// Start failures (command not found, permission denied).
		return nil, &errors.BackendError{
			ExitCode: -1,
			Message:  err.Error(),
		}
	}

	events, err := decodeEvents(stdout.Bytes())
	if err != nil {
		dumpPath, dumpErr := inv.dumpRaw(sessionID, stdout.Bytes())
		if dumpErr != nil {
			inv.Logger.Warn("failed to dump raw backend output", "error", dumpErr)
		}
		return nil, &errors.MalformedOutputError{
			DumpPath: dumpPath,
			Cause:    err,
		}
	}

	res := resolve(events, sessionID)
	res.WallClock = wallClock

	if res.IsError {
		return nil, &errors.BackendError{
			Message: fmt.Sprintf("backend reported an error result: %s", res.Text),
		}
	}

	inv.Logger.Debug("backend reply",
		"session_id", res.SessionID,
		"response_length", len(res.Text),
		"wall_clock_ms", wallClock.Milliseconds(),
	)
	return res, nil
}

// dumpRaw writes unparseable CLI output to DumpDir for postmortems and
// returns the dump path.
func (inv *CLIInvoker) dumpRaw(sessionID string, raw []byte) (string, error) {
	dir := inv.DumpDir
	if dir == "" {
		dir = ".discourse-debug"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create dump directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("raw-%s.txt", sessionID))
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", fmt.Errorf("failed to write dump file: %w", err)
	}
	return path, nil
}
