package extract

import (
	"strings"
	"testing"
)

const acmeReasoning = "Okay, let's tackle this summary. First, I need to understand the main points. " +
	"Acme Corp announced a new product line today. I need to understand the main points."

func TestExtractTaggedResponse(t *testing.T) {
	got, rule := ExtractWithRule("<response> Acme Corp hires 50 engineers. </response>")
	if got != "Acme Corp hires 50 engineers." {
		t.Fatalf("unexpected summary: %q", got)
	}
	if rule != RuleTagged {
		t.Fatalf("unexpected rule: %q", rule)
	}
}

func TestExtractTaggedResponseIgnoresNoise(t *testing.T) {
	inputs := []string{
		"Sure! <response>Acme Corp hires 50 engineers.</response> Hope this helps.",
		"<RESPONSE>\nAcme Corp hires 50 engineers.\n</Response>",
		"preamble\n\n<response>\n  Acme Corp hires 50 engineers.  \n</response>\n\ntrailer",
	}

	for _, in := range inputs {
		if got := Extract(in); got != "Acme Corp hires 50 engineers." {
			t.Fatalf("unexpected summary for %q: %q", in, got)
		}
	}
}

func TestExtractTaggedMultiline(t *testing.T) {
	got := Extract("<response>Line one.\nLine two.</response>")
	if got != "Line one.\nLine two." {
		t.Fatalf("expected dot to match newlines, got %q", got)
	}
}

func TestExtractEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		got, rule := ExtractWithRule(in)
		if got != NoResponsePlaceholder || rule != RuleEmpty {
			t.Fatalf("unexpected result for %q: %q (%s)", in, got, rule)
		}
	}
}

func TestExtractReasoningDropsScaffolding(t *testing.T) {
	got, rule := ExtractWithRule(acmeReasoning)
	if got != "Acme Corp announced a new product line today." {
		t.Fatalf("unexpected summary: %q", got)
	}
	if rule != RuleReasoning {
		t.Fatalf("unexpected rule: %q", rule)
	}
}

func TestExtractReasoningTemplate(t *testing.T) {
	in := "The user wants a summary of a LinkedIn post. Let me think about the key facts. " +
		"In summary, Acme Corp is opening a Berlin office and hiring fifty engineers this spring."

	got, rule := ExtractWithRule(in)
	want := "Acme Corp is opening a Berlin office and hiring fifty engineers this spring."
	if got != want {
		t.Fatalf("unexpected summary: %q", got)
	}
	if rule != RuleReasoning {
		t.Fatalf("unexpected rule: %q", rule)
	}
}

func TestExtractReasoningTemplateTooShortFallsThrough(t *testing.T) {
	if _, ok := matchSummaryTemplate("The user wants this. In summary, Acme grew."); ok {
		t.Fatalf("expected short template capture to be rejected")
	}
}

func TestExtractReasoningPositionalFallback(t *testing.T) {
	in := "Let me think about what this post says. " +
		"Jane Doe joined Acme Corp as chief technology officer after ten years at Globex. " +
		"She will lead the platform and data teams from the London office. " +
		"That should be enough for a summary."

	got := Extract(in)
	want := "Jane Doe joined Acme Corp as chief technology officer after ten years at Globex. " +
		"She will lead the platform and data teams from the London office."
	if got != want {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestExtractConclusionMarker(t *testing.T) {
	in := "I read the post carefully and noted several details.\nFinal answer: Acme Corp hires 50 engineers."

	got, rule := ExtractWithRule(in)
	if got != "Acme Corp hires 50 engineers." {
		t.Fatalf("unexpected summary: %q", got)
	}
	if rule != RuleConclusion {
		t.Fatalf("unexpected rule: %q", rule)
	}
}

func TestExtractConclusionUsesLastMarker(t *testing.T) {
	in := "Summary: draft one.\nConclusion: Acme Corp hires 50 engineers."
	if got := Extract(in); got != "Acme Corp hires 50 engineers." {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestExtractReasoningWithFinalAnswerUsesConclusion(t *testing.T) {
	in := "Okay, the user wants a summary of this post. Let me think about it. " +
		"Final answer: Acme Corp hires 50 engineers in Belfast."

	got, rule := ExtractWithRule(in)
	if got != "Acme Corp hires 50 engineers in Belfast." {
		t.Fatalf("unexpected summary: %q", got)
	}
	if rule != RuleConclusion {
		t.Fatalf("unexpected rule: %q", rule)
	}

	if got, rule = ExtractWithRule(acmeReasoning); rule != RuleReasoning {
		t.Fatalf("expected reasoning rule for %q, got %q (%q)", acmeReasoning, rule, got)
	}
}

func TestExtractStripsPreamble(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Here's a summary: Acme Corp hires 50 engineers.", "Acme Corp hires 50 engineers."},
		{"Summary: Acme Corp hires 50 engineers.", "Acme Corp hires 50 engineers."},
		{"Okay, here is a concise summary of the post: Acme Corp hires 50 engineers.", "Acme Corp hires 50 engineers."},
		{"<response>Acme Corp hires 50 engineers.", "Acme Corp hires 50 engineers."},
	}

	for _, tt := range tests {
		if got := Extract(tt.in); got != tt.want {
			t.Fatalf("unexpected summary for %q: %q", tt.in, got)
		}
	}
}

func TestExtractFirstLongParagraph(t *testing.T) {
	in := "Acme.\n\nAcme Corp is hiring fifty engineers for its new Berlin office.\n\nMore text follows here as well."

	got, rule := ExtractWithRule(in)
	if got != "Acme Corp is hiring fifty engineers for its new Berlin office." {
		t.Fatalf("unexpected summary: %q", got)
	}
	if rule != RuleParagraph {
		t.Fatalf("unexpected rule: %q", rule)
	}
}

func TestExtractFirstLineWhenNoLongParagraph(t *testing.T) {
	if got := Extract("Acme hires.\nMore soon."); got != "Acme hires." {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestExtractNeverEmpty(t *testing.T) {
	for _, in := range []string{"Summary:", "<response></response>", "<think></think>", "Okay, "} {
		if got := Extract(in); strings.TrimSpace(got) == "" {
			t.Fatalf("expected non-empty summary for %q", in)
		}
	}
}

func TestExtractStripsThinkBlocks(t *testing.T) {
	in := "<think>The user wants a short summary. Let me think.</think>\n<response>Acme Corp hires 50 engineers.</response>"
	if got := Extract(in); got != "Acme Corp hires 50 engineers." {
		t.Fatalf("unexpected summary: %q", got)
	}

	onlyThinking := "<think>" + acmeReasoning + "</think>"
	if got := Extract(onlyThinking); got != "Acme Corp announced a new product line today." {
		t.Fatalf("unexpected summary from thinking-only output: %q", got)
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"<response> Acme Corp hires 50 engineers. </response>",
		acmeReasoning,
		"Here's a summary: Acme Corp hires 50 engineers.",
		"Acme.\n\nAcme Corp is hiring fifty engineers for its new Berlin office.",
	}

	for _, in := range inputs {
		first := Extract(in)
		second := Extract(in)
		if first != second {
			t.Fatalf("expected stable result for %q: %q vs %q", in, first, second)
		}
	}
}

func TestExtractResultIsTrimmed(t *testing.T) {
	inputs := []string{
		"<response>\n\n  padded  \n</response>",
		"  plain answer with enough characters to be a paragraph  \n\n",
		acmeReasoning,
	}

	for _, in := range inputs {
		got := Extract(in)
		if got != strings.TrimSpace(got) {
			t.Fatalf("expected trimmed result for %q, got %q", in, got)
		}
	}
}

func TestEffectiveText(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		reasoning string
		want      string
		ok        bool
	}{
		{"content wins", " summary ", "thinking", "summary", true},
		{"reasoning when content blank", "  \n", " thinking ", "thinking", true},
		{"both empty", "", " ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EffectiveText(tt.content, tt.reasoning)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("unexpected effective text: %q, %v", got, ok)
			}
		})
	}
}

func TestHasReasoningMarkers(t *testing.T) {
	if !hasReasoningMarkers("Okay, LET’S TACKLE THIS SUMMARY now") {
		t.Fatalf("expected marker match to be case- and quote-insensitive")
	}

	if hasReasoningMarkers("Acme Corp announced a new product line today.") {
		t.Fatalf("expected plain sentence to carry no markers")
	}
}
