// Package textfilter sanitizes player-supplied text before it reaches
// rooms or the narration provider.
package textfilter

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Sanitize trims the input, strips control characters, collapses
// internal whitespace runs to single spaces, and truncates to maxRunes.
// A maxRunes of zero or less disables truncation.
func Sanitize(text string, maxRunes int) string {
	sb := strings.Builder{}
	lastWasSpace := true // leading whitespace is dropped
	for _, r := range text {
		if unicode.IsControl(r) {
			continue
		}
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				sb.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		sb.WriteRune(r)
		lastWasSpace = false
	}

	result := strings.TrimRight(sb.String(), " ")
	if maxRunes > 0 {
		runes := []rune(result)
		if len(runes) > maxRunes {
			result = strings.TrimRight(string(runes[:maxRunes]), " ")
		}
	}
	return result
}

// TitleCase renders an item or room display name in English title case.
func TitleCase(s string) string {
	return titleCaser.String(strings.ToLower(s))
}
