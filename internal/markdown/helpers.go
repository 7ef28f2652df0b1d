package markdown

import "strings"

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const mdV2SpecialChars = `\._[](){}#|!+-=*~>` + "`"

// EscapeV2 escapes text for a MarkdownV2 message.
func EscapeV2(input string) string {
	lookup := mdV2SpecialCharLookup()
	charsToEscape := 0

	for i := 0; i < len(input); i++ {
		if lookup[input[i]] {
			charsToEscape++
		}
	}
	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	for i := 0; i < len(input); i++ {
		c := input[i]
		if lookup[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

// EscapeLinkURL escapes the target of an inline link, where only ")" and backslash are special.
func EscapeLinkURL(u string) string {
	return linkURLReplacer.Replace(u)
}

//nolint:gochecknoglobals // Stateless replacer.
var linkURLReplacer = strings.NewReplacer(`\`, `\\`, `)`, `\)`)

func mdV2SpecialCharLookup() [256]bool {
	var m [256]bool
	for _, c := range []byte(mdV2SpecialChars) {
		m[c] = true
	}
	return m
}
