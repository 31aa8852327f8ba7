package console

import "fmt"

// Script is a canned Interactor for tests. Choices and answers are consumed
// in order; running out of a queue panics so a test that prompts more than
// it scripted fails loudly.
type Script struct {
	// RecoveryChoices are returned by AskRecovery in order.
	RecoveryChoices []RecoveryChoice
	// CheckIns are returned by AskCheckIn in order.
	CheckIns []CheckInResult
	// TextAnswers are returned by AskText in order.
	TextAnswers []string

	// Output collects everything said to the human.
	Output []string
	// RecoveryCalls records (turn, participant) for each AskRecovery call.
	RecoveryCalls []string
	// CheckInCalls records the turn of each AskCheckIn call.
	CheckInCalls []int
}

func (s *Script) AskRecovery(turn int, participantName string, failure error) RecoveryChoice {
	s.RecoveryCalls = append(s.RecoveryCalls, fmt.Sprintf("turn %d: %s", turn, participantName))
	if len(s.RecoveryChoices) == 0 {
		panic("script: unexpected AskRecovery call")
	}
	choice := s.RecoveryChoices[0]
	s.RecoveryChoices = s.RecoveryChoices[1:]
	return choice
}

func (s *Script) AskCheckIn(turn, maxTurns int, allowView bool) CheckInResult {
	s.CheckInCalls = append(s.CheckInCalls, turn)
	if len(s.CheckIns) == 0 {
		panic("script: unexpected AskCheckIn call")
	}
	result := s.CheckIns[0]
	s.CheckIns = s.CheckIns[1:]
	return result
}

func (s *Script) AskText(label string) string {
	if len(s.TextAnswers) == 0 {
		panic("script: unexpected AskText call")
	}
	answer := s.TextAnswers[0]
	s.TextAnswers = s.TextAnswers[1:]
	return answer
}

func (s *Script) Say(format string, args ...any) {
	s.Output = append(s.Output, fmt.Sprintf(format, args...))
}
