package extract

import (
	"regexp"
	"strings"
)

// Openers models put before the answer. Applied repeatedly, anchored at the start.
//
//nolint:gochecknoglobals // Ordered pattern table.
var preamblePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*</?response>\s*`),
	regexp.MustCompile(`(?i)^\s*(?:okay|ok|alright|sure)[,.!]?\s+`),
	regexp.MustCompile(`(?i)^\s*here(?:'s|\x{2019}s| is) (?:a |the |my )?(?:concise |brief |short |quick )?summary(?: of (?:the|this) post)?\s*[:.\-]?\s*`),
	regexp.MustCompile(`(?i)^\s*summary\s*[:\-]\s*`),
	regexp.MustCompile(`(?i)^\s*let(?:'s|\x{2019}s| me) (?:tackle|summarize|break down) (?:this|the post)(?: summary)?[.:,!]?\s*`),
}

var (
	trailingResponseTagRe = regexp.MustCompile(`(?i)\s*</?response>\s*$`)
	conclusionRe          = regexp.MustCompile(`(?is).*\b(?:conclusion|summary|final answer)\s*:\s*(.+)$`)
)

func stripPreamble(text string) string {
	cleaned := strings.TrimSpace(text)

	for changed := true; changed; {
		changed = false

		for _, re := range preamblePatterns {
			if next := re.ReplaceAllString(cleaned, ""); next != cleaned {
				cleaned = next
				changed = true
			}
		}
	}

	return strings.TrimSpace(trailingResponseTagRe.ReplaceAllString(cleaned, ""))
}
