package query

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Parsed is the structured form of a raw query string. Order of Phrases and
// Words is first-seen order in the input.
type Parsed struct {
	Phrases         []string
	Words           []string
	ExcludedWords   []string
	ExcludedPhrases []string
}

// trimEdges strips the quote, dash and apostrophe characters that the
// grammar leaves attached to term edges.
const trimEdges = "-'\""

// phrasePattern captures quoted segments with an optional exclusion dash.
var phrasePattern = regexp.MustCompile(`(-?)"([^"]*)"`)

// Parse turns raw query text into a Parsed query.
//
// Normalization unescapes HTML entities, lower-cases codepoint-aware, and
// collapses runs of non-word characters (control characters, punctuation,
// exotic spaces) into single spaces. Quoted segments become phrases; a
// leading dash on a word or opening quote marks the term excluded.
//
// Parse never fails. An empty phrase and a lone dash are discarded; whether
// any usable term remains is decided by Classify.
func Parse(text string) Parsed {
	text = normalize(text)

	var parsed Parsed

	// Phrase extraction first, so quoted content is not re-split on spaces.
	rest := phrasePattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := phrasePattern.FindStringSubmatch(m)
		phrase := strings.TrimSpace(strings.Trim(sub[2], trimEdges))
		if phrase == "" {
			return " "
		}
		if sub[1] == "-" {
			parsed.ExcludedPhrases = append(parsed.ExcludedPhrases, phrase)
		} else {
			parsed.Phrases = append(parsed.Phrases, phrase)
		}
		return " "
	})

	for _, word := range strings.Fields(rest) {
		excluded := strings.HasPrefix(word, "-")
		word = strings.Trim(word, trimEdges)
		if word == "" {
			continue
		}
		if excluded {
			parsed.ExcludedWords = append(parsed.ExcludedWords, word)
		} else {
			parsed.Words = append(parsed.Words, word)
		}
	}

	return parsed
}

// normalize lower-cases the input and reduces it to words, quotes, dashes
// and apostrophes separated by single spaces.
func normalize(text string) string {
	text = html.UnescapeString(text)
	text = cases.Lower(language.Und).String(text)

	var b strings.Builder
	b.Grow(len(text))
	space := true
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			space = false
		case r == '"' || r == '-' || r == '\'':
			b.WriteRune(r)
			space = false
		default:
			// Everything else, including control characters and the
			// narrow/non-breaking space family, separates terms.
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return b.String()
}
