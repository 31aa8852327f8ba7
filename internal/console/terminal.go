package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Terminal implements Interactor with line-oriented prompts on an input
// reader and output writer, normally stdin/stdout.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal creates a Terminal reading prompts from in and writing to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Say prints a progress line.
func (t *Terminal) Say(format string, args ...any) {
	fmt.Fprintf(t.out, format+"\n", args...)
}

// AskRecovery presents the failure and loops until one of r/s/a is chosen.
func (t *Terminal) AskRecovery(turn int, participantName string, failure error) RecoveryChoice {
	divider := strings.Repeat("=", 60)
	fmt.Fprintln(t.out)
	fmt.Fprintln(t.out, errorStyle.Render(divider))
	fmt.Fprintln(t.out, errorStyle.Render(fmt.Sprintf("ERROR during Turn %d (%s):", turn, participantName)))
	fmt.Fprintf(t.out, "  %v\n", failure)
	fmt.Fprintln(t.out, errorStyle.Render(divider))

	for {
		answer := t.promptLine("[r]etry / [s]kip this turn / [a]bort")
		switch strings.ToLower(answer) {
		case "r":
			return Retry
		case "s":
			return Skip
		case "a":
			return Abort
		}
		fmt.Fprintln(t.out, dimStyle.Render("  Please answer r, s, or a."))
	}
}

// AskCheckIn presents the scheduled check-in banner and loops until a valid
// choice is made. The Message choice reads its message here; the View choice
// is returned to the caller, which shows the document and asks again.
func (t *Terminal) AskCheckIn(turn, maxTurns int, allowView bool) CheckInResult {
	divider := strings.Repeat("=", 50)
	fmt.Fprintln(t.out)
	fmt.Fprintln(t.out, bannerStyle.Render(divider))
	fmt.Fprintln(t.out, bannerStyle.Render(fmt.Sprintf("=== CHECK-IN (Turn %d/%d) ===", turn, maxTurns)))
	fmt.Fprintln(t.out, bannerStyle.Render(divider))

	label := "[c] Continue  [s] Stop  [m] Add a message"
	if allowView {
		label += "  [v] View document"
	}

	for {
		answer := strings.ToLower(t.promptLine(label))
		switch answer {
		case "c":
			return CheckInResult{Choice: Continue}
		case "s":
			return CheckInResult{Choice: Stop}
		case "m":
			return CheckInResult{
				Choice:  Message,
				Message: t.AskText("Referee message"),
			}
		case "v":
			if allowView {
				return CheckInResult{Choice: View}
			}
		}
		fmt.Fprintln(t.out, dimStyle.Render("  Invalid choice."))
	}
}

// AskText blocks for one line of free text.
func (t *Terminal) AskText(label string) string {
	return t.promptLine(label)
}

func (t *Terminal) promptLine(label string) string {
	fmt.Fprintf(t.out, "%s: ", promptStyle.Render(label))
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}
