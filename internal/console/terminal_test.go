package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestAskRecovery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  RecoveryChoice
	}{
		{"retry", "r\n", Retry},
		{"skip", "s\n", Skip},
		{"abort", "a\n", Abort},
		{"uppercase accepted", "R\n", Retry},
		{"invalid then valid", "x\nnope\ns\n", Skip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			term := NewTerminal(strings.NewReader(tt.input), &out)

			got := term.AskRecovery(3, "Ada", errors.New("timed out"))
			if got != tt.want {
				t.Errorf("AskRecovery = %q, want %q", got, tt.want)
			}
			if !strings.Contains(out.String(), "ERROR during Turn 3 (Ada)") {
				t.Errorf("missing failure banner:\n%s", out.String())
			}
			if !strings.Contains(out.String(), "timed out") {
				t.Errorf("missing error text:\n%s", out.String())
			}
		})
	}
}

func TestAskCheckIn(t *testing.T) {
	t.Run("continue", func(t *testing.T) {
		var out bytes.Buffer
		term := NewTerminal(strings.NewReader("c\n"), &out)

		res := term.AskCheckIn(4, 10, false)
		if res.Choice != Continue {
			t.Errorf("Choice = %q, want continue", res.Choice)
		}
		if !strings.Contains(out.String(), "CHECK-IN (Turn 4/10)") {
			t.Errorf("missing banner:\n%s", out.String())
		}
	})

	t.Run("message reads its text", func(t *testing.T) {
		var out bytes.Buffer
		term := NewTerminal(strings.NewReader("m\nstay on topic\n"), &out)

		res := term.AskCheckIn(4, 10, false)
		if res.Choice != Message {
			t.Errorf("Choice = %q, want message", res.Choice)
		}
		if res.Message != "stay on topic" {
			t.Errorf("Message = %q", res.Message)
		}
	})

	t.Run("view only offered when allowed", func(t *testing.T) {
		var out bytes.Buffer
		term := NewTerminal(strings.NewReader("v\ns\n"), &out)

		res := term.AskCheckIn(4, 10, false)
		if res.Choice != Stop {
			t.Errorf("Choice = %q; v must be rejected when view is not allowed", res.Choice)
		}
	})

	t.Run("view returned when allowed", func(t *testing.T) {
		var out bytes.Buffer
		term := NewTerminal(strings.NewReader("v\n"), &out)

		res := term.AskCheckIn(4, 10, true)
		if res.Choice != View {
			t.Errorf("Choice = %q, want view", res.Choice)
		}
	})
}

func TestAskText(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("the answer\n"), &out)

	if got := term.AskText("Referee response"); got != "the answer" {
		t.Errorf("AskText = %q", got)
	}
	if !strings.Contains(out.String(), "Referee response") {
		t.Errorf("missing label:\n%s", out.String())
	}
}

func TestScriptConsumesInOrder(t *testing.T) {
	s := &Script{
		RecoveryChoices: []RecoveryChoice{Retry, Skip},
		TextAnswers:     []string{"first", "second"},
	}

	if got := s.AskRecovery(1, "Ada", errors.New("x")); got != Retry {
		t.Errorf("first recovery = %q, want retry", got)
	}
	if got := s.AskRecovery(1, "Ada", errors.New("x")); got != Skip {
		t.Errorf("second recovery = %q, want skip", got)
	}
	if got := s.AskText("q"); got != "first" {
		t.Errorf("first answer = %q", got)
	}
	s.Say("turn %d done", 1)
	if len(s.Output) != 1 || s.Output[0] != "turn 1 done" {
		t.Errorf("Output = %v", s.Output)
	}
}
