package orchestrator

import (
	"context"

	"github.com/Iron-Ham/discourse/internal/ai"
	"github.com/Iron-Ham/discourse/internal/audit"
	"github.com/Iron-Ham/discourse/internal/config"
	"github.com/Iron-Ham/discourse/internal/console"
	"github.com/Iron-Ham/discourse/internal/errors"
	"github.com/Iron-Ham/discourse/internal/logging"
	"github.com/Iron-Ham/discourse/internal/referee"
	"github.com/Iron-Ham/discourse/internal/session"
)

// Options wires an orchestrator's collaborators.
type Options struct {
	Config   *config.Config
	Invoker  ai.Invoker
	Sessions *session.Registry
	Audit    *audit.Log
	UI       console.Interactor
	Logger   *logging.Logger
	RunDir   string
}

// runner is the audited invocation core shared by both variants. It owns
// the recovery loop, session bookkeeping, referee handling, and check-ins;
// the variants own turn sequencing and artifact layout.
type runner struct {
	cfg      *config.Config
	invoker  ai.Invoker
	sessions *session.Registry
	audit    *audit.Log
	ui       console.Interactor
	log      *logging.Logger
}

func newRunner(opts Options) runner {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	return runner{
		cfg:      opts.Config,
		invoker:  opts.Invoker,
		sessions: opts.Sessions,
		audit:    opts.Audit,
		ui:       opts.UI,
		log:      logger,
	}
}

// participantInfo builds the audit representation of the configured
// participants.
func (r *runner) participantInfo() map[string]audit.ParticipantInfo {
	info := make(map[string]audit.ParticipantInfo, len(r.cfg.Participants))
	for key, p := range r.cfg.Participants {
		info[key] = audit.ParticipantInfo{Name: p.Name, Role: p.Role}
	}
	return info
}

// loopConfig is the config subset recorded at session start.
func (r *runner) loopConfig() map[string]any {
	return map[string]any{
		"max_turns":         r.cfg.MaxTurns,
		"check_in_interval": r.cfg.CheckInInterval,
		"turn_timeout":      r.cfg.TurnTimeoutSeconds,
	}
}

// invokeTurn performs one audited invocation with the retry/skip/abort
// recovery loop. It resumes the role's recorded session, or starts a new
// one with the system prompt attached. Returns the reply text, or
// skipped=true when the human chose to skip, or an error for abort and
// interruption. The error audit record is written before any recovery
// action executes.
func (r *runner) invokeTurn(ctx context.Context, turn int, roleKey, prompt, systemPrompt string) (text string, skipped bool, err error) {
	p := r.cfg.Participants[roleKey]
	if err := r.audit.TurnStart(turn, roleKey, p.Name); err != nil {
		return "", false, err
	}

	log := r.log.WithTurn(turn).WithRole(roleKey)
	for {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}

		sessionID, _ := r.sessions.Lookup(roleKey)
		isNew := sessionID == ""
		req := ai.Request{Prompt: prompt, SessionID: sessionID}
		effectiveSystemPrompt := ""
		if isNew {
			req.SystemPrompt = systemPrompt
			effectiveSystemPrompt = systemPrompt
		}

		res, invokeErr := r.invoker.Invoke(ctx, req)
		if invokeErr != nil {
			if ctx.Err() != nil {
				return "", false, ctx.Err()
			}
			log.Warn("invocation failed", "error", invokeErr.Error())

			choice := r.ui.AskRecovery(turn, p.Name, invokeErr)
			if err := r.audit.Error(turn, roleKey, p.Name, invokeErr, string(choice)); err != nil {
				return "", false, err
			}
			switch choice {
			case console.Retry:
				continue
			case console.Skip:
				return "", true, nil
			default:
				return "", false, errors.ErrUserAbort
			}
		}

		if err := r.sessions.Record(roleKey, res.SessionID); err != nil {
			return "", false, err
		}
		if err := r.audit.Invoke(turn, roleKey, res, prompt, effectiveSystemPrompt, isNew); err != nil {
			return "", false, err
		}
		log.Debug("turn produced", "session_id", res.SessionID, "response_length", len(res.Text))
		return res.Text, false, nil
	}
}

// handleReferee strips a referee marker from reply text, blocks for the
// human's answer, and records it through recordNote and the audit log. The
// cleaned text is returned for persistence; text without a marker passes
// through untouched.
func (r *runner) handleReferee(turn int, participantName, text string, recordNote func(turn int, note string) error) (string, error) {
	cleaned, question := referee.Extract(text)
	if question == "" {
		return text, nil
	}

	r.ui.Say("\n%s asks the referee:", participantName)
	r.ui.Say("  %s", question)
	answer := r.ui.AskText("Referee response")

	if err := recordNote(turn, answer); err != nil {
		return "", err
	}
	if err := r.audit.Referee(turn, question, answer); err != nil {
		return "", err
	}
	return cleaned, nil
}

// checkIn runs one scheduled check-in. recordNote persists a referee
// message; viewDocument, when non-nil, enables the view option and supplies
// the document to show, after which the check-in repeats. Returns stop=true
// when the human chose to end the loop.
func (r *runner) checkIn(turn int, recordNote func(turn int, note string) error, viewDocument func() (string, error)) (stop bool, err error) {
	for {
		result := r.ui.AskCheckIn(turn, r.cfg.MaxTurns, viewDocument != nil)
		switch result.Choice {
		case console.Stop:
			return true, r.audit.CheckIn(turn, string(console.Stop), "")

		case console.Message:
			if err := recordNote(turn, result.Message); err != nil {
				return false, err
			}
			if err := r.audit.CheckIn(turn, string(console.Message), result.Message); err != nil {
				return false, err
			}
			r.ui.Say("  Message added.")
			return false, nil

		case console.View:
			content, err := viewDocument()
			if err != nil {
				return false, err
			}
			r.ui.Say("\n--- Document ---\n\n%s\n--- End ---\n", content)
			continue

		default:
			return false, r.audit.CheckIn(turn, string(console.Continue), "")
		}
	}
}

// isInterruption reports whether err represents an external interrupt
// rather than a turn failure or abort.
func isInterruption(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, errors.ErrInterrupted)
}
