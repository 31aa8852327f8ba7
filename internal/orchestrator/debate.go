package orchestrator

import (
	"context"

	"github.com/Iron-Ham/discourse/internal/ai"
	"github.com/Iron-Ham/discourse/internal/console"
	"github.com/Iron-Ham/discourse/internal/errors"
	"github.com/Iron-Ham/discourse/internal/transcript"
)

// Debate alternates two participants over a shared transcript: odd turns go
// to "a", even turns to "b". Check-ins pause the loop at the configured
// interval, and a completed run ends with closing statements from both
// sides.
type Debate struct {
	runner
	transcript *transcript.Transcript
}

// NewDebate creates the debate transcript inside the run directory and
// wires the orchestrator.
func NewDebate(opts Options) (*Debate, error) {
	names := make(map[string]string, len(opts.Config.Participants))
	for key, p := range opts.Config.Participants {
		names[key] = p.Name
	}

	tr, err := transcript.Create(opts.RunDir, opts.Config.Topic, names)
	if err != nil {
		return nil, err
	}
	return &Debate{
		runner:     newRunner(opts),
		transcript: tr,
	}, nil
}

// TranscriptPath returns the conversation file path.
func (d *Debate) TranscriptPath() string {
	return d.transcript.Path()
}

// TotalTurns returns the number of turns appended so far.
func (d *Debate) TotalTurns() int {
	return d.transcript.TotalTurns()
}

// Run executes the debate to one of its terminal statuses. An external
// interrupt finalizes as interrupted, an abort choice as aborted; both
// leave a header-consistent transcript and a session_end audit record.
func (d *Debate) Run(ctx context.Context) (transcript.Status, error) {
	a := d.cfg.Participants["a"]
	b := d.cfg.Participants["b"]
	d.ui.Say("Topic: %s", d.cfg.Topic)
	d.ui.Say("Participants: %s vs %s", a.Name, b.Name)
	d.ui.Say("Max turns: %d, Check-in every %d turns", d.cfg.MaxTurns, d.cfg.CheckInInterval)
	d.ui.Say("")
	d.ui.Say("Conversation file: %s", d.transcript.Path())
	d.ui.Say("")

	if err := d.audit.SessionStart(d.cfg.Mode, d.cfg.Topic, d.participantInfo(), d.loopConfig()); err != nil {
		return "", err
	}

	status := transcript.StatusCompleted
	runErr := d.runTurns(ctx)
	switch {
	case runErr == nil:
		closings, err := d.collectClosings(ctx)
		if err != nil {
			if !isInterruption(err) {
				return "", err
			}
			status = transcript.StatusInterrupted
			d.ui.Say("\n\nInterrupted! Finalizing conversation...")
			if err := d.transcript.Finalize(status, nil); err != nil {
				return "", err
			}
			break
		}
		if err := d.transcript.Finalize(status, closings); err != nil {
			return "", err
		}

	case errors.Is(runErr, errors.ErrUserAbort):
		status = transcript.StatusAborted
		d.ui.Say("\nAborted! Finalizing conversation...")
		if err := d.transcript.Finalize(status, nil); err != nil {
			return "", err
		}

	case isInterruption(runErr):
		status = transcript.StatusInterrupted
		d.ui.Say("\n\nInterrupted! Finalizing conversation...")
		if err := d.transcript.Finalize(status, nil); err != nil {
			return "", err
		}

	default:
		return "", runErr
	}

	if err := d.audit.SessionEnd(string(status), d.transcript.TotalTurns()); err != nil {
		return "", err
	}

	d.ui.Say("\nTotal turns: %d", d.transcript.TotalTurns())
	return status, nil
}

// runTurns drives the alternating turn loop. A nil return means the loop
// ran to its natural end or a check-in stop; closing statements are still
// collected in both cases.
func (d *Debate) runTurns(ctx context.Context) error {
	for turn := 1; turn <= d.cfg.MaxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		speakerKey := "b"
		if turn%2 == 1 {
			speakerKey = "a"
		}
		p := d.cfg.Participants[speakerKey]
		d.ui.Say("--- Turn %d/%d: %s ---", turn, d.cfg.MaxTurns, p.Name)

		conversation, err := d.transcript.Read()
		if err != nil {
			return err
		}
		text, skipped, err := d.invokeTurn(ctx, turn, speakerKey,
			turnPrompt(conversation, turn), debateSystemPrompt(p))
		if err != nil {
			return err
		}
		if skipped {
			if err := d.transcript.AppendTurn(turn, p.Name, SkipPlaceholder); err != nil {
				return err
			}
			continue
		}

		text, err = d.handleReferee(turn, p.Name, text, d.transcript.AppendRefereeNote)
		if err != nil {
			return err
		}
		if err := d.transcript.AppendTurn(turn, p.Name, text); err != nil {
			return err
		}
		d.ui.Say("  Turn %d/%d — %s responded", turn, d.cfg.MaxTurns, p.Name)

		if turn%d.cfg.CheckInInterval == 0 && turn < d.cfg.MaxTurns {
			stop, err := d.checkIn(turn, d.transcript.AppendRefereeNote, nil)
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}
	}
	return nil
}

// collectClosings asks each participant for a closing statement in role-key
// order. Failures here do not go through the recovery prompt: the error is
// audited as skipped and a placeholder takes the statement's place, so a
// flaky backend cannot strand an otherwise complete debate.
func (d *Debate) collectClosings(ctx context.Context) ([]transcript.Closing, error) {
	d.ui.Say("\n--- Collecting closing statements ---")

	conversation, err := d.transcript.Read()
	if err != nil {
		return nil, err
	}
	prompt := closingPrompt(conversation)

	var closings []transcript.Closing
	for _, key := range []string{"a", "b"} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := d.cfg.Participants[key]
		d.ui.Say("  Requesting closing statement from %s...", p.Name)

		closingTurn := d.transcript.TotalTurns() + 1
		sessionID, _ := d.sessions.Lookup(key)
		isNew := sessionID == ""
		req := ai.Request{Prompt: prompt, SessionID: sessionID}
		if isNew {
			req.SystemPrompt = debateSystemPrompt(p)
		}

		res, invokeErr := d.invoker.Invoke(ctx, req)
		if invokeErr != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if err := d.audit.Error(closingTurn, key, p.Name, invokeErr, string(console.Skip)); err != nil {
				return nil, err
			}
			d.ui.Say("  Warning: Could not get closing statement from %s: %v", p.Name, invokeErr)
			closings = append(closings, transcript.Closing{Name: p.Name, Text: ClosingPlaceholder})
			continue
		}

		if err := d.audit.Invoke(closingTurn, key, res, prompt, req.SystemPrompt, isNew); err != nil {
			return nil, err
		}
		closings = append(closings, transcript.Closing{Name: p.Name, Text: res.Text})
		d.ui.Say("  %s — done", p.Name)
	}
	return closings, nil
}
