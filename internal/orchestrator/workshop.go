package orchestrator

import (
	"context"

	"github.com/Iron-Ham/discourse/internal/document"
	"github.com/Iron-Ham/discourse/internal/errors"
	"github.com/Iron-Ham/discourse/internal/transcript"
)

// Workshop drives the author/editor revision loop. Turn 1 is the author's
// initial draft; after that, editor reviews and author revisions alternate
// until the editor's verdict is APPROVED, the turn budget runs out, a
// check-in stops the loop, or the run is aborted or interrupted.
type Workshop struct {
	runner
	doc *document.Document
	log *transcript.EditorialLog

	// totalTurns is the highest turn number consumed so far, across both
	// artifacts. It never exceeds MaxTurns.
	totalTurns int
}

// NewWorkshop initializes the workshop document (with git history) and the
// editorial log inside the run directory.
func NewWorkshop(opts Options) (*Workshop, error) {
	doc, err := document.Create(opts.RunDir, document.Options{
		Topic:      opts.Config.Topic,
		SourceFile: opts.Config.SourceFile,
	})
	if err != nil {
		return nil, err
	}
	log, err := transcript.CreateEditorialLog(opts.RunDir, opts.Config.Topic, opts.Config.Brief)
	if err != nil {
		return nil, err
	}
	return &Workshop{
		runner: newRunner(opts),
		doc:    doc,
		log:    log,
	}, nil
}

// DocumentPath returns the workshop document path.
func (w *Workshop) DocumentPath() string { return w.doc.Path() }

// LogPath returns the editorial log path.
func (w *Workshop) LogPath() string { return w.log.Path() }

// TotalTurns returns the number of turns consumed so far.
func (w *Workshop) TotalTurns() int { return w.totalTurns }

// Run executes the workshop to one of its terminal statuses.
func (w *Workshop) Run(ctx context.Context) (transcript.Status, error) {
	author := w.cfg.Participants["author"]
	editor := w.cfg.Participants["editor"]
	w.ui.Say("Workshop: %s", w.cfg.Topic)
	w.ui.Say("  Author: %s", author.Name)
	w.ui.Say("  Editor: %s", editor.Name)
	w.ui.Say("  Max turns: %d, Check-in every %d turns", w.cfg.MaxTurns, w.cfg.CheckInInterval)
	w.ui.Say("")

	if err := w.audit.SessionStart(w.cfg.Mode, w.cfg.Topic, w.participantInfo(), w.loopConfig()); err != nil {
		return "", err
	}

	status := transcript.StatusCompleted
	runErr := w.runLoop(ctx)
	switch {
	case runErr == nil:

	case errors.Is(runErr, errors.ErrUserAbort):
		status = transcript.StatusAborted
		w.ui.Say("\nAborted! Finalizing...")

	case isInterruption(runErr):
		status = transcript.StatusInterrupted
		w.ui.Say("\n\nInterrupted! Finalizing...")

	default:
		return "", runErr
	}

	if err := w.log.Finalize(status, w.totalTurns); err != nil {
		return "", err
	}
	if err := w.audit.SessionEnd(string(status), w.totalTurns); err != nil {
		return "", err
	}

	w.ui.Say("\nDocument: %s", w.doc.Path())
	w.ui.Say("Editorial log: %s", w.log.Path())
	w.ui.Say("Total turns: %d", w.totalTurns)
	return status, nil
}

// runLoop drives the revision loop. A nil return finalizes as completed:
// approval, turn budget exhausted, and a check-in stop all count as
// completion.
func (w *Workshop) runLoop(ctx context.Context) error {
	author := w.cfg.Participants["author"]
	editor := w.cfg.Participants["editor"]

	// Turn 1: initial draft.
	w.totalTurns = 1
	w.ui.Say("--- Turn 1/%d: %s (initial draft) ---", w.cfg.MaxTurns, author.Name)

	draft, skipped, err := w.invokeTurn(ctx, 1, "author",
		authorInitialPrompt(w.cfg.Brief), authorSystemPrompt(author))
	if err != nil {
		return err
	}
	if skipped {
		// No draft means nothing to review; the run ends here.
		return w.log.AppendSkippedTurn(1, author.Name, SkipPlaceholder)
	}

	draft, err = w.handleReferee(1, author.Name, draft, w.log.AppendRefereeNote)
	if err != nil {
		return err
	}
	if err := w.doc.Write(draft, 1); err != nil {
		return err
	}
	w.ui.Say("  Initial draft written and committed.")

	turn := 1
	for turn < w.cfg.MaxTurns {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Editor review.
		turn++
		w.totalTurns = turn
		w.ui.Say("--- Turn %d/%d: %s (review) ---", turn, w.cfg.MaxTurns, editor.Name)

		doc, err := w.doc.Read()
		if err != nil {
			return err
		}
		feedback, skipped, err := w.invokeTurn(ctx, turn, "editor",
			editorReviewPrompt(w.cfg.Brief, doc), editorSystemPrompt(editor))
		if err != nil {
			return err
		}

		haveFeedback := !skipped
		if skipped {
			if err := w.log.AppendSkippedTurn(turn, editor.Name, SkipPlaceholder); err != nil {
				return err
			}
			w.ui.Say("  Editor turn skipped.")
		} else {
			feedback, err = w.handleReferee(turn, editor.Name, feedback, w.log.AppendRefereeNote)
			if err != nil {
				return err
			}
			if err := w.log.AppendFeedback(turn, editor.Name, feedback); err != nil {
				return err
			}
			w.ui.Say("  Review recorded.")

			if IsApproved(feedback) {
				w.ui.Say("\n  %s verdict: APPROVED", editor.Name)
				w.ui.Say("  Workshop complete.")
				return nil
			}
		}

		if stop, err := w.maybeCheckIn(turn); err != nil || stop {
			return err
		}

		// Author revision. The turn number is only consumed when the
		// budget still has room for it, so totalTurns never exceeds
		// MaxTurns.
		if turn >= w.cfg.MaxTurns {
			break
		}
		turn++
		w.totalTurns = turn

		if haveFeedback {
			w.ui.Say("--- Turn %d/%d: %s (revision) ---", turn, w.cfg.MaxTurns, author.Name)
			doc, err := w.doc.Read()
			if err != nil {
				return err
			}
			revision, skipped, err := w.invokeTurn(ctx, turn, "author",
				authorRevisionPrompt(doc, feedback), authorSystemPrompt(author))
			if err != nil {
				return err
			}
			if skipped {
				if err := w.log.AppendSkippedTurn(turn, author.Name, SkipPlaceholder); err != nil {
					return err
				}
				w.ui.Say("  Author turn skipped.")
			} else {
				revision, err = w.handleReferee(turn, author.Name, revision, w.log.AppendRefereeNote)
				if err != nil {
					return err
				}
				if err := w.doc.Write(revision, turn); err != nil {
					return err
				}
				w.ui.Say("  Revision committed.")
			}
		} else {
			// A skipped review leaves nothing to revise against; the
			// paired author turn is consumed and recorded as skipped.
			w.ui.Say("--- Turn %d/%d: %s (skipped: no feedback) ---", turn, w.cfg.MaxTurns, author.Name)
			if err := w.log.AppendSkippedTurn(turn, author.Name, PairedSkipPlaceholder); err != nil {
				return err
			}
		}

		if stop, err := w.maybeCheckIn(turn); err != nil || stop {
			return err
		}
	}

	w.ui.Say("\nWorkshop ended after %d turns (max: %d).", w.totalTurns, w.cfg.MaxTurns)
	return nil
}

// maybeCheckIn runs the scheduled check-in when the turn falls on the
// configured interval and the loop is not already at its end.
func (w *Workshop) maybeCheckIn(turn int) (bool, error) {
	if turn%w.cfg.CheckInInterval != 0 || turn >= w.cfg.MaxTurns {
		return false, nil
	}
	return w.checkIn(turn, w.log.AppendRefereeNote, w.doc.Read)
}
