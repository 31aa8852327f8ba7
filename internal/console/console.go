// Package console is the human interaction boundary of a run. The
// orchestrator talks to an Interactor for every blocking prompt: failure
// recovery, scheduled check-ins, referee answers. Terminal implements it on
// the controlling terminal; Script implements it for tests.
package console

// RecoveryChoice is the human's decision after a failed invocation.
type RecoveryChoice string

const (
	// Retry re-attempts the same invocation with identical session and prompt.
	Retry RecoveryChoice = "retry"
	// Skip records a placeholder for the turn and moves on.
	Skip RecoveryChoice = "skip"
	// Abort terminates the run immediately with the aborted status.
	Abort RecoveryChoice = "abort"
)

// CheckInChoice is the human's decision at a scheduled check-in.
type CheckInChoice string

const (
	// Continue resumes the loop unchanged.
	Continue CheckInChoice = "continue"
	// Stop ends the loop early; debate runs still collect closings.
	Stop CheckInChoice = "stop"
	// Message injects a referee note into the artifact, then continues.
	Message CheckInChoice = "message"
	// View shows the current document, then the check-in repeats.
	View CheckInChoice = "view"
)

// CheckInResult pairs a check-in choice with its message, when the choice
// was Message.
type CheckInResult struct {
	Choice  CheckInChoice
	Message string
}

// Interactor is the blocking prompt surface. Calls have no timeout; an
// interrupt during a prompt is handled by the outer run loop, not here.
type Interactor interface {
	// AskRecovery presents a failed turn and blocks for retry/skip/abort.
	AskRecovery(turn int, participantName string, failure error) RecoveryChoice

	// AskCheckIn presents the scheduled check-in. allowView adds the
	// view-document option offered in workshop mode.
	AskCheckIn(turn, maxTurns int, allowView bool) CheckInResult

	// AskText blocks for a free-text line, used for referee answers.
	AskText(label string) string

	// Say prints progress output to the human.
	Say(format string, args ...any)
}
