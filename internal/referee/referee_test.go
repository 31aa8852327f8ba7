package referee

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantCleaned  string
		wantQuestion string
	}{
		{
			name:         "no marker returns text unchanged",
			text:         "Just a normal reply.",
			wantCleaned:  "Just a normal reply.",
			wantQuestion: "",
		},
		{
			name:         "marker is extracted and stripped",
			text:         "My argument.\n\n<!-- REFEREE: is this in scope? -->",
			wantCleaned:  "My argument.",
			wantQuestion: "is this in scope?",
		},
		{
			name:         "marker in the middle of text",
			text:         "Before.\n<!-- REFEREE: clarify? -->\nAfter.",
			wantCleaned:  "Before.\n\nAfter.",
			wantQuestion: "clarify?",
		},
		{
			name:         "case-insensitive marker",
			text:         "Text. <!-- referee: lowercase works? -->",
			wantCleaned:  "Text.",
			wantQuestion: "lowercase works?",
		},
		{
			name:         "multiline question",
			text:         "Text.\n<!-- REFEREE: a question\nthat spans\nlines? -->",
			wantCleaned:  "Text.",
			wantQuestion: "a question\nthat spans\nlines?",
		},
		{
			name:         "only first marker is honored",
			text:         "<!-- REFEREE: first? --> middle <!-- REFEREE: second? -->",
			wantCleaned:  "middle <!-- REFEREE: second? -->",
			wantQuestion: "first?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned, question := Extract(tt.text)
			if cleaned != tt.wantCleaned {
				t.Errorf("cleaned = %q, want %q", cleaned, tt.wantCleaned)
			}
			if question != tt.wantQuestion {
				t.Errorf("question = %q, want %q", question, tt.wantQuestion)
			}
		})
	}
}

func TestExtractIdempotent(t *testing.T) {
	cleaned, question := Extract("Argument.\n<!-- REFEREE: done? -->")
	if question == "" {
		t.Fatal("first pass should find the question")
	}

	again, q2 := Extract(cleaned)
	if again != cleaned {
		t.Errorf("second pass changed the text: %q vs %q", again, cleaned)
	}
	if q2 != "" {
		t.Errorf("second pass found a question: %q", q2)
	}
}
