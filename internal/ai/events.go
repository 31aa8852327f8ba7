package ai

import (
	"encoding/json"
	"fmt"
)

// Event is a single JSON event object emitted by `claude --output-format json`.
// The CLI interleaves several event types; fields that only apply to some
// types are left zero on the others.
type Event struct {
	Type      string   `json:"type"`
	Subtype   string   `json:"subtype,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
	Model     string   `json:"model,omitempty"`
	Message   *Message `json:"message,omitempty"`

	// Result-event fields.
	Result        string   `json:"result,omitempty"`
	DurationMS    *int64   `json:"duration_ms,omitempty"`
	DurationAPIMS *int64   `json:"duration_api_ms,omitempty"`
	TotalCostUSD  *float64 `json:"total_cost_usd,omitempty"`
	NumTurns      *int     `json:"num_turns,omitempty"`
	IsError       bool     `json:"is_error,omitempty"`
	Usage         *Usage   `json:"usage,omitempty"`
}

// Event type discriminators used by the CLI.
const (
	eventTypeSystem    = "system"
	eventTypeAssistant = "assistant"
	eventTypeResult    = "result"
)

// Message is the assistant message payload inside an assistant event.
type Message struct {
	Model   string         `json:"model,omitempty"`
	Content []ContentBlock `json:"content,omitempty"`
	Usage   *Usage         `json:"usage,omitempty"`
}

// ContentBlock is one block of assistant message content. Only text blocks
// are consumed; tool-use and other block types pass through untouched.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Usage carries token counts. Pointers distinguish absent fields from zero.
type Usage struct {
	InputTokens              *int64 `json:"input_tokens,omitempty"`
	OutputTokens             *int64 `json:"output_tokens,omitempty"`
	CacheReadInputTokens     *int64 `json:"cache_read_input_tokens,omitempty"`
	CacheCreationInputTokens *int64 `json:"cache_creation_input_tokens,omitempty"`
}

// decodeEvents parses raw CLI stdout into a list of events. The CLI emits
// either a JSON array of event objects or a single object. Array entries that
// are not objects are skipped.
func decodeEvents(data []byte) ([]Event, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		// Not an array; try a single event object.
		var single Event
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("failed to decode CLI output: %w", err)
		}
		return []Event{single}, nil
	}

	events := make([]Event, 0, len(raws))
	for _, raw := range raws {
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// resolve extracts the reply text, effective session ID, and metrics from a
// decoded event list. fallbackSessionID is used when no event names one.
func resolve(events []Event, fallbackSessionID string) *Result {
	res := &Result{
		SessionID: fallbackSessionID,
		Events:    events,
	}

	for _, ev := range events {
		if ev.Type == eventTypeResult {
			res.Text = ev.Result
			if ev.SessionID != "" {
				res.SessionID = ev.SessionID
			}
		} else if ev.Type == eventTypeSystem && res.SessionID == "" {
			res.SessionID = ev.SessionID
		}
	}

	if res.Text == "" {
		// Fall back to the first assistant text block.
	outer:
		for _, ev := range events {
			if ev.Type != eventTypeAssistant || ev.Message == nil {
				continue
			}
			for _, block := range ev.Message.Content {
				if block.Type == "text" && block.Text != "" {
					res.Text = block.Text
					break outer
				}
			}
		}
	}

	for _, ev := range events {
		switch ev.Type {
		case eventTypeSystem:
			if res.Metrics.Model == "" {
				res.Metrics.Model = ev.Model
			}

		case eventTypeAssistant:
			if ev.Message == nil {
				continue
			}
			if res.Metrics.Model == "" {
				res.Metrics.Model = ev.Message.Model
			}
			res.Metrics.mergeUsage(ev.Message.Usage)

		case eventTypeResult:
			if ev.DurationMS != nil {
				res.Metrics.DurationMS = ev.DurationMS
			}
			if ev.DurationAPIMS != nil {
				res.Metrics.DurationAPIMS = ev.DurationAPIMS
			}
			if ev.TotalCostUSD != nil {
				res.Metrics.CostUSD = ev.TotalCostUSD
			}
			if ev.NumTurns != nil {
				res.Metrics.NumTurns = ev.NumTurns
			}
			res.IsError = ev.IsError
			res.Metrics.mergeUsage(ev.Usage)
		}
	}

	return res
}

// mergeUsage overlays non-nil usage fields onto the metrics. Later events
// win, matching the CLI's convention of repeating cumulative counts.
func (m *Metrics) mergeUsage(u *Usage) {
	if u == nil {
		return
	}
	if u.InputTokens != nil {
		m.InputTokens = u.InputTokens
	}
	if u.OutputTokens != nil {
		m.OutputTokens = u.OutputTokens
	}
	if u.CacheReadInputTokens != nil {
		m.CacheReadTokens = u.CacheReadInputTokens
	}
	if u.CacheCreationInputTokens != nil {
		m.CacheCreationTokens = u.CacheCreationInputTokens
	}
}
