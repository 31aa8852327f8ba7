package ai

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/discourse/internal/errors"
)

func testInvoker() *CLIInvoker {
	inv := NewCLIInvoker("claude", "bypassPermissions", 0, nil)
	inv.newSessionID = func() string { return "generated-uuid" }
	return inv
}

func TestBuildArgs(t *testing.T) {
	t.Run("new session gets session id and system prompt", func(t *testing.T) {
		inv := testInvoker()
		args, sessionID, isNew := inv.buildArgs(Request{
			Prompt:       "hello",
			SystemPrompt: "be brief",
		})

		if !isNew {
			t.Error("expected a new session")
		}
		if sessionID != "generated-uuid" {
			t.Errorf("sessionID = %q, want generated-uuid", sessionID)
		}
		assertArgPair(t, args, "--session-id", "generated-uuid")
		assertArgPair(t, args, "--system-prompt", "be brief")
		assertArgPair(t, args, "--permission-mode", "bypassPermissions")
		if slices.Contains(args, "--resume") {
			t.Error("new session must not pass --resume")
		}
		if args[len(args)-1] != "hello" {
			t.Errorf("prompt must be the final argument, got %q", args[len(args)-1])
		}
	})

	t.Run("resumed session omits system prompt", func(t *testing.T) {
		inv := testInvoker()
		args, sessionID, isNew := inv.buildArgs(Request{
			Prompt:       "continue",
			SessionID:    "existing",
			SystemPrompt: "must not appear",
		})

		if isNew {
			t.Error("expected a resumed session")
		}
		if sessionID != "existing" {
			t.Errorf("sessionID = %q, want existing", sessionID)
		}
		assertArgPair(t, args, "--resume", "existing")
		if slices.Contains(args, "--system-prompt") {
			t.Error("resumed session must not pass --system-prompt")
		}
		if slices.Contains(args, "--session-id") {
			t.Error("resumed session must not pass --session-id")
		}
	})
}

// stubCLI writes an executable script that emits the given stdout and
// returns its path.
func stubCLI(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub CLI scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "claude-stub")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write stub: %v", err)
	}
	return path
}

func TestInvoke(t *testing.T) {
	t.Run("successful invocation", func(t *testing.T) {
		stub := stubCLI(t, `echo '[{"type":"system","session_id":"s-9"},{"type":"result","result":"the reply","session_id":"s-9","duration_ms":120}]'`)
		inv := testInvoker()
		inv.Command = stub

		res, err := inv.Invoke(context.Background(), Request{Prompt: "hi"})
		if err != nil {
			t.Fatalf("Invoke returned error: %v", err)
		}
		if res.Text != "the reply" {
			t.Errorf("Text = %q, want %q", res.Text, "the reply")
		}
		if res.SessionID != "s-9" {
			t.Errorf("SessionID = %q, want s-9", res.SessionID)
		}
		if res.Metrics.DurationMS == nil || *res.Metrics.DurationMS != 120 {
			t.Errorf("DurationMS = %v, want 120", res.Metrics.DurationMS)
		}
		if res.WallClock <= 0 {
			t.Error("WallClock should be positive")
		}
	})

	t.Run("non-zero exit becomes BackendError", func(t *testing.T) {
		stub := stubCLI(t, `echo "something broke" >&2; exit 3`)
		inv := testInvoker()
		inv.Command = stub

		_, err := inv.Invoke(context.Background(), Request{Prompt: "hi"})
		var backendErr *errors.BackendError
		if !errors.As(err, &backendErr) {
			t.Fatalf("expected BackendError, got %v", err)
		}
		if backendErr.ExitCode != 3 {
			t.Errorf("ExitCode = %d, want 3", backendErr.ExitCode)
		}
		if !strings.Contains(backendErr.Stderr, "something broke") {
			t.Errorf("Stderr = %q, should contain the CLI stderr", backendErr.Stderr)
		}
	})

	t.Run("missing command becomes BackendError", func(t *testing.T) {
		inv := testInvoker()
		inv.Command = filepath.Join(t.TempDir(), "no-such-binary")

		_, err := inv.Invoke(context.Background(), Request{Prompt: "hi"})
		var backendErr *errors.BackendError
		if !errors.As(err, &backendErr) {
			t.Fatalf("expected BackendError, got %v", err)
		}
	})

	t.Run("error result becomes BackendError", func(t *testing.T) {
		stub := stubCLI(t, `echo '{"type":"result","result":"overloaded","is_error":true}'`)
		inv := testInvoker()
		inv.Command = stub

		_, err := inv.Invoke(context.Background(), Request{Prompt: "hi"})
		if !errors.Is(err, errors.ErrBackendFailure) {
			t.Fatalf("expected a backend failure, got %v", err)
		}
	})

	t.Run("malformed output is dumped", func(t *testing.T) {
		stub := stubCLI(t, `echo 'this is not json'`)
		inv := testInvoker()
		inv.Command = stub
		inv.DumpDir = t.TempDir()

		_, err := inv.Invoke(context.Background(), Request{Prompt: "hi"})
		var malformed *errors.MalformedOutputError
		if !errors.As(err, &malformed) {
			t.Fatalf("expected MalformedOutputError, got %v", err)
		}
		want := filepath.Join(inv.DumpDir, "raw-generated-uuid.txt")
		if malformed.DumpPath != want {
			t.Errorf("DumpPath = %q, want %q", malformed.DumpPath, want)
		}
		data, readErr := os.ReadFile(malformed.DumpPath)
		if readErr != nil {
			t.Fatalf("dump file not written: %v", readErr)
		}
		if !strings.Contains(string(data), "this is not json") {
			t.Errorf("dump contents = %q, want the raw output", data)
		}
	})

	t.Run("timeout becomes TimeoutError", func(t *testing.T) {
		stub := stubCLI(t, `sleep 5`)
		inv := testInvoker()
		inv.Command = stub
		inv.Timeout = 50 * time.Millisecond

		_, err := inv.Invoke(context.Background(), Request{Prompt: "hi"})
		if !errors.Is(err, errors.ErrTimeout) {
			t.Fatalf("expected a timeout error, got %v", err)
		}
	})

	t.Run("parent cancellation passes through", func(t *testing.T) {
		stub := stubCLI(t, `sleep 5`)
		inv := testInvoker()
		inv.Command = stub

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		_, err := inv.Invoke(ctx, Request{Prompt: "hi"})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}

func assertArgPair(t *testing.T, args []string, flag, value string) {
	t.Helper()
	i := slices.Index(args, flag)
	if i < 0 {
		t.Errorf("args missing %s: %v", flag, args)
		return
	}
	if i+1 >= len(args) || args[i+1] != value {
		t.Errorf("%s = %q, want %q", flag, args[i+1], value)
	}
}
