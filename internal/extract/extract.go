// Package extract recovers a summary from raw model output.
//
// Models are only asked, never forced, to answer as <response>...</response>, so
// extraction is an ordered list of independent rules. Each rule either produces a
// summary or passes, and the last rule always produces something.
package extract

import (
	"regexp"
	"strings"
)

// NoResponsePlaceholder is returned for blank input.
const NoResponsePlaceholder = "No response received"

// Rule names the step of the chain that produced a summary.
type Rule string

const (
	RuleEmpty      Rule = "empty"
	RuleTagged     Rule = "tagged"
	RuleReasoning  Rule = "reasoning"
	RuleConclusion Rule = "conclusion"
	RuleParagraph  Rule = "paragraph"
)

const (
	minRecoveredSummaryLen = 50
	minParagraphLen        = 30
)

type matcher struct {
	rule  Rule
	match func(text string) (string, bool)
}

//nolint:gochecknoglobals // Ordered rule table, never mutated.
var chain = []matcher{
	{RuleEmpty, matchEmpty},
	{RuleTagged, matchTagged},
	{RuleReasoning, matchReasoning},
	{RuleConclusion, matchConclusion},
	{RuleParagraph, matchParagraph},
}

var (
	thinkBlockRe = regexp.MustCompile(`(?is)<think>(.*?)</think>`)
	thinkTagRe   = regexp.MustCompile(`(?i)</?think>`)
	responseRe   = regexp.MustCompile(`(?is)<response>(.*?)</response>`)
	paragraphRe  = regexp.MustCompile(`\n\s*\n`)
)

// Extract returns the summary recovered from raw. It never fails.
func Extract(raw string) string {
	summary, _ := ExtractWithRule(raw)
	return summary
}

// ExtractWithRule is Extract that also reports which rule matched.
func ExtractWithRule(raw string) (string, Rule) {
	text := stripThinking(raw)

	for _, m := range chain {
		if summary, ok := m.match(text); ok {
			return strings.TrimSpace(summary), m.rule
		}
	}

	// matchParagraph always matches; kept for completeness.
	return strings.TrimSpace(text), RuleParagraph
}

// EffectiveText picks the text to extract from when a message carries both a primary
// content field and an auxiliary reasoning trace.
func EffectiveText(content, reasoning string) (string, bool) {
	if trimmed := strings.TrimSpace(content); trimmed != "" {
		return trimmed, true
	}

	if trimmed := strings.TrimSpace(reasoning); trimmed != "" {
		return trimmed, true
	}

	return "", false
}

// stripThinking removes <think> blocks emitted by local reasoning models. When the
// block is all there is, its contents are kept so the reasoning rule can work on them.
func stripThinking(raw string) string {
	if !thinkTagRe.MatchString(raw) {
		return raw
	}

	stripped := thinkBlockRe.ReplaceAllString(raw, "")
	stripped = thinkTagRe.ReplaceAllString(stripped, "")
	if strings.TrimSpace(stripped) != "" {
		return stripped
	}

	return thinkTagRe.ReplaceAllString(raw, "")
}

func matchEmpty(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return NoResponsePlaceholder, true
	}

	return "", false
}

func matchTagged(text string) (string, bool) {
	m := responseRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}

	inner := strings.TrimSpace(m[1])
	if inner == "" {
		return "", false
	}

	return inner, true
}

func matchConclusion(text string) (string, bool) {
	cleaned := stripPreamble(text)

	m := conclusionRe.FindStringSubmatch(cleaned)
	if m == nil {
		return "", false
	}

	tail := strings.TrimSpace(m[1])
	if tail == "" {
		return "", false
	}

	return tail, true
}

func matchParagraph(text string) (string, bool) {
	cleaned := strings.TrimSpace(stripPreamble(text))

	for _, p := range paragraphRe.Split(cleaned, -1) {
		if p = strings.TrimSpace(p); len(p) > minParagraphLen {
			return p, true
		}
	}

	for _, line := range strings.Split(cleaned, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, true
		}
	}

	if cleaned == "" {
		// Preamble stripping ate everything; the raw text beats an empty summary.
		return strings.TrimSpace(text), true
	}

	return cleaned, true
}
