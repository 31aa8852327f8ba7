package orchestrator

import (
	"fmt"
	"regexp"

	"github.com/Iron-Ham/discourse/internal/config"
)

// Placeholder texts persisted when a contribution could not be produced.
// These are fixed sentinels so readers and tooling can recognize them.
const (
	// SkipPlaceholder stands in for a turn skipped after a failed invocation.
	SkipPlaceholder = "*(Turn skipped due to error.)*"
	// PairedSkipPlaceholder stands in for an author turn that had no editor
	// feedback to revise against.
	PairedSkipPlaceholder = "*(Turn skipped: no editor feedback to revise against.)*"
	// ClosingPlaceholder stands in for a closing statement that failed.
	ClosingPlaceholder = "*(Closing statement could not be collected due to an error.)*"
)

// approvedPattern matches the editor's approval verdict anywhere in a
// review, case-insensitively.
var approvedPattern = regexp.MustCompile(`(?i)\bVerdict:\s*APPROVED\b`)

// IsApproved reports whether editor feedback carries the approval verdict.
func IsApproved(feedback string) bool {
	return approvedPattern.MatchString(feedback)
}

const debateSystemPromptTemplate = `You are "%s" in a structured discourse.

Your role: %s

Rules:
- Stay in character and argue your position
- Engage directly with the other participant's points
- Be concise but substantive (aim for 200-400 words per turn)
- If you need input from the human referee, include: <!-- REFEREE: your question here -->
- When asked for a closing statement, summarize your key arguments and any concessions`

func debateSystemPrompt(p config.Participant) string {
	return fmt.Sprintf(debateSystemPromptTemplate, p.Name, p.Role)
}

const turnPromptTemplate = `The conversation so far:

%s

---

Write your response for Turn %d. Output ONLY your response content — no headers, no metadata.`

func turnPrompt(conversation string, turn int) string {
	return fmt.Sprintf(turnPromptTemplate, conversation, turn)
}

const closingPromptTemplate = `The conversation so far:

%s

---

The discourse has concluded. Write your closing statement. Summarize your key arguments, acknowledge any strong points from your opponent, and note any concessions you'd make. Output ONLY your closing statement — no headers, no metadata.`

func closingPrompt(conversation string) string {
	return fmt.Sprintf(closingPromptTemplate, conversation)
}

const authorSystemPromptTemplate = `You are "%s" — a workshop author.

Your role: %s

You are collaborating with an editor to produce a polished document. Your job is to write and revise.

Rules:
- When writing a first draft, follow the brief closely
- When revising, make surgical changes that address the editor's specific feedback
- Preserve what works — don't rewrite sections the editor praised
- Output the COMPLETE document every time (it will replace the previous version)
- Do not include meta-commentary about your changes — just output the document
- If you need input from the human referee, include: <!-- REFEREE: your question here -->`

func authorSystemPrompt(p config.Participant) string {
	return fmt.Sprintf(authorSystemPromptTemplate, p.Name, p.Role)
}

const authorInitialPromptTemplate = `Write the first draft of this document.

**Brief:**
%s

Output ONLY the document content (markdown). No preamble, no meta-commentary.`

func authorInitialPrompt(brief string) string {
	return fmt.Sprintf(authorInitialPromptTemplate, brief)
}

const authorRevisionPromptTemplate = `Here is the current document:

---
%s
---

The editor provided this feedback:

---
%s
---

Revise the document to address the editor's feedback. Make targeted changes — preserve what works.
Output the COMPLETE revised document. No preamble, no meta-commentary.`

func authorRevisionPrompt(document, feedback string) string {
	return fmt.Sprintf(authorRevisionPromptTemplate, document, feedback)
}

const editorSystemPromptTemplate = `You are "%s" — a workshop editor.

Your role: %s

You are reviewing a document that was written to fulfill a specific brief. Your job is to provide constructive, actionable feedback.

Your review MUST use this structure:

**Assessment:** 1-2 sentence overall evaluation.

**Strengths:** What works well (bullet points).

**Suggestions:** Specific, actionable changes (bullet points). Reference sections or lines.

**Questions:** Any clarifying questions for the author (bullet points). Omit if none.

**Verdict:** One of:
- ` + "`REVISE`" + ` — the document needs changes (default)
- ` + "`APPROVED`" + ` — the document meets the brief and is ready for publication

Rules:
- Be specific — "tighten the introduction" is better than "needs work"
- Balance praise and criticism — acknowledge what works
- Refer to specific sections when suggesting changes
- Only use APPROVED when the document genuinely meets the brief
- If you need input from the human referee, include: <!-- REFEREE: your question here -->`

func editorSystemPrompt(p config.Participant) string {
	return fmt.Sprintf(editorSystemPromptTemplate, p.Name, p.Role)
}

const editorReviewPromptTemplate = `Review this document against the original brief.

**Brief:**
%s

**Document:**

---
%s
---

Provide your structured review. Remember to include a Verdict (REVISE or APPROVED).`

func editorReviewPrompt(brief, document string) string {
	return fmt.Sprintf(editorReviewPromptTemplate, brief, document)
}
