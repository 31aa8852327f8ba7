// Package referee implements the referee interjection protocol. A participant
// may embed a question to the human referee in its reply as an HTML comment:
//
//	<!-- REFEREE: is this line of argument in scope? -->
//
// The marker is detected case-insensitively and may span multiple lines. Only
// the first marker in a reply is honored; the marker is stripped from the
// text before it is persisted.
package referee

import (
	"regexp"
	"strings"
)

var markerPattern = regexp.MustCompile(`(?is)<!--\s*REFEREE:\s*(.*?)\s*-->`)

// Extract returns the text with the first referee marker removed and the
// question it contained. When no marker is present the text is returned
// unchanged with an empty question, so extraction is idempotent on already
// cleaned text.
func Extract(text string) (cleaned string, question string) {
	loc := markerPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, ""
	}

	question = strings.TrimSpace(text[loc[2]:loc[3]])
	cleaned = strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	return cleaned, question
}
