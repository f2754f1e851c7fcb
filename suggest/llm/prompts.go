package llm

import "fmt"

// systemPrompt instructs the model to emit a flat JSON list of alternative
// search terms.
func systemPrompt(max int) string {
	return fmt.Sprintf(`You help users of a discussion-board search engine whose query returned no results.
Given a comma-separated list of search terms, propose up to %d alternative terms: corrected spellings, synonyms, or closely related words a forum post would plausibly contain.

Rules:
- lowercase, single words or short phrases
- never repeat an input term
- respond with JSON only, in the form {"alternatives": ["term1", "term2"]}
- respond with {"alternatives": []} if you have no good alternatives`, max)
}
