// Package session persists the role → backend-session-id mapping for a run.
//
// The registry is rewritten to sessions.json after every successful
// invocation so a crashed run can be resumed by hand with the recorded IDs.
// Writes are atomic (temp file + fsync + rename) so the file is never
// observed half-written.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// RegistryFileName is the session registry file inside a run directory.
const RegistryFileName = "sessions.json"

// Registry maps logical role keys ("a", "b", "author", "editor") to the
// resumable session IDs returned by the backend. A role with no entry has
// not spoken yet.
type Registry struct {
	path string
	ids  map[string]string
}

// NewRegistry creates a registry persisted inside runDir. Loads any existing
// sessions.json so a manually restarted run resumes its sessions.
func NewRegistry(runDir string) (*Registry, error) {
	r := &Registry{
		path: filepath.Join(runDir, RegistryFileName),
		ids:  make(map[string]string),
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("failed to read session registry: %w", err)
	}
	if err := json.Unmarshal(data, &r.ids); err != nil {
		return nil, fmt.Errorf("failed to parse session registry: %w", err)
	}
	return r, nil
}

// Lookup returns the session ID recorded for a role, if any.
func (r *Registry) Lookup(role string) (string, bool) {
	id, ok := r.ids[role]
	return id, ok
}

// Record stores the session ID for a role and rewrites the registry file.
// The latest recorded ID for a role always wins.
func (r *Registry) Record(role, sessionID string) error {
	r.ids[role] = sessionID

	data, err := json.MarshalIndent(r.ids, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session registry: %w", err)
	}
	if err := atomicWriteFile(r.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write session registry: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current role → session id map.
func (r *Registry) Snapshot() map[string]string {
	out := make(map[string]string, len(r.ids))
	for k, v := range r.ids {
		out[k] = v
	}
	return out
}

// atomicWriteFile writes data to a file atomically by writing to a temporary
// file first, then renaming. This ensures the target file is never in a
// partially-written state.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// Create temp file in same directory to ensure atomic rename
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on any error
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
