// Package ai invokes the claude CLI in non-interactive print mode and parses
// its JSON event output.
//
// # Invocation
//
// Each call runs `claude -p --output-format json` as a subprocess. A request
// carrying a session ID resumes that conversation with --resume; otherwise a
// fresh UUID is generated and passed with --session-id, and the system prompt
// (if any) is attached. Resumed sessions never receive a system prompt since
// the CLI rejects the combination.
//
// # Event parsing
//
// The CLI emits either a single JSON event object or an array of them. The
// reply text is taken from the result event when present, falling back to the
// first text content block of an assistant event. The effective session ID
// prefers the result event, then the system event, then the caller's value.
// Unknown event types are ignored so CLI upgrades that add event kinds do not
// break parsing.
//
// # Metrics
//
// Token counts, durations, and cost are optional in the CLI output. Absent
// fields stay nil rather than zero so downstream consumers can distinguish
// "unknown" from "free".
package ai
