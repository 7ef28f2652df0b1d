package extract

import (
	"regexp"
	"strings"
)

// Phrases that show up when a model thinks out loud instead of answering in the
// requested format. The list trades recall for precision: a phrase that could open a
// genuine summary does not belong here.
//
//nolint:gochecknoglobals // Immutable lookup table.
var reasoningMarkers = []string{
	"let's tackle this summary",
	"let me tackle this",
	"i need to understand the main points",
	"i need to summarize",
	"i need to make sure",
	"the user wants",
	"the user is asking",
	"the user provided",
	"let me think",
	"let me start by",
	"first, i need to",
	"i should mention",
	"i should keep",
	"alright, let's",
}

// Templates that capture a declarative summary trailing a reasoning preamble.
//
//nolint:gochecknoglobals // Ordered pattern table.
var summaryTemplates = []*regexp.Regexp{
	regexp.MustCompile(`(?is)\b(?:in summary|to summarize|to sum up|in short|tl;?dr)[,:]?\s+(.+)$`),
	regexp.MustCompile(`(?is)\b(?:so|therefore|thus),?\s+(?:a |the |my )?(?:concise |brief |short |final )?summary (?:is|would be|could be)[:\s]+(.+)$`),
	regexp.MustCompile(`(?is)\bthe (?:post|author|announcement) (?:says|states|announces|explains|describes|highlights)(?: that)?\s+(.+)$`),
	regexp.MustCompile(`(?is)\bthe main points? (?:is|are)(?: that)?[:\s]+(.+)$`),
}

var sentenceRe = regexp.MustCompile(`[^.!?]+(?:[.!?]+["')\]]*|$)`)

func hasReasoningMarkers(text string) bool {
	lower := normalizeQuotes(strings.ToLower(text))

	for _, marker := range reasoningMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	return false
}

func matchReasoning(text string) (string, bool) {
	if !hasReasoningMarkers(text) {
		return "", false
	}

	if summary, ok := matchSummaryTemplate(text); ok {
		return summary, true
	}

	sentences := splitSentences(text)

	if len(sentences) > 2 {
		body := withoutReasoning(sentences[1 : len(sentences)-1])
		if joined := strings.Join(body, " "); len(joined) > minRecoveredSummaryLen {
			return joined, true
		}
	}

	// An explicit conclusion marker is left to the conclusion rule.
	if conclusionRe.MatchString(stripPreamble(text)) {
		return "", false
	}

	// Short answers wrapped in scaffolding fall below the length bar above; any
	// sentence that carries no marker is the best remaining candidate.
	if joined := strings.Join(withoutReasoning(sentences), " "); joined != "" {
		return joined, true
	}

	return "", false
}

func matchSummaryTemplate(text string) (string, bool) {
	for _, re := range summaryTemplates {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		captured := strings.Trim(strings.TrimSpace(m[1]), `"'`)
		if len(captured) > minRecoveredSummaryLen {
			return captured, true
		}
	}

	return "", false
}

func splitSentences(text string) []string {
	var sentences []string

	for _, s := range sentenceRe.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}

	return sentences
}

func withoutReasoning(sentences []string) []string {
	kept := make([]string, 0, len(sentences))

	for _, s := range sentences {
		if !hasReasoningMarkers(s) {
			kept = append(kept, s)
		}
	}

	return kept
}

func normalizeQuotes(s string) string {
	return strings.NewReplacer("’", "'", "‘", "'").Replace(s)
}
