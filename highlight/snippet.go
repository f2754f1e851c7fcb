package highlight

import "strings"

// ellipsis joins a snippet to the text it was cut from.
const ellipsis = "…"

// Snippet extracts a preview window of roughly window runes from plain
// text, centered on the first term occurrence. Without a match the head of
// the text is used. Cuts are rune-safe and marked with ellipses; text that
// already fits is returned whole.
func Snippet(text string, terms []string, window int) string {
	if window <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= window {
		return text
	}

	start := 0
	if re := termPattern(terms); re != nil {
		// The pattern is case-insensitive already; matching a lower-cased
		// copy would yield byte offsets that do not fit the original text.
		if loc := re.FindStringIndex(text); loc != nil {
			matchStart := len([]rune(text[:loc[0]]))
			matchLen := len([]rune(text[loc[0]:loc[1]]))
			start = matchStart - (window-matchLen)/2
		}
	}
	if start < 0 {
		start = 0
	}
	end := start + window
	if end > len(runes) {
		end = len(runes)
		start = end - window
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString(ellipsis)
	}
	b.WriteString(strings.TrimSpace(string(runes[start:end])))
	if end < len(runes) {
		b.WriteString(ellipsis)
	}
	return b.String()
}
