package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWordsAndPhrases(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Parsed
	}{
		{
			name: "plain words",
			text: "lantern forest",
			want: Parsed{Words: []string{"lantern", "forest"}},
		},
		{
			name: "quoted phrase",
			text: `"old oak tree" lantern`,
			want: Parsed{Phrases: []string{"old oak tree"}, Words: []string{"lantern"}},
		},
		{
			name: "excluded word",
			text: "lantern -spam",
			want: Parsed{Words: []string{"lantern"}, ExcludedWords: []string{"spam"}},
		},
		{
			name: "excluded phrase",
			text: `-"for sale" lantern`,
			want: Parsed{Words: []string{"lantern"}, ExcludedPhrases: []string{"for sale"}},
		},
		{
			name: "empty phrase discarded",
			text: `"" lantern`,
			want: Parsed{Words: []string{"lantern"}},
		},
		{
			name: "lone dash discarded",
			text: "- lantern",
			want: Parsed{Words: []string{"lantern"}},
		},
		{
			name: "upper case folded",
			text: "LANTERN Forest",
			want: Parsed{Words: []string{"lantern", "forest"}},
		},
		{
			name: "punctuation collapses to spaces",
			text: "lantern,forest!!night",
			want: Parsed{Words: []string{"lantern", "forest", "night"}},
		},
		{
			name: "html entities decoded",
			text: "fish &amp; chips",
			want: Parsed{Words: []string{"fish", "chips"}},
		},
		{
			name: "apostrophe kept inside word",
			text: "o'brien's lantern",
			want: Parsed{Words: []string{"o'brien's", "lantern"}},
		},
		{
			name: "empty input",
			text: "",
			want: Parsed{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			assert.Equal(t, tt.want.Phrases, got.Phrases)
			assert.Equal(t, tt.want.Words, got.Words)
			assert.Equal(t, tt.want.ExcludedWords, got.ExcludedWords)
			assert.Equal(t, tt.want.ExcludedPhrases, got.ExcludedPhrases)
		})
	}
}

func TestParseNormalizationIdempotent(t *testing.T) {
	inputs := []string{
		`"Old OAK tree" -spam lantern`,
		"fish &amp; chips",
		"lantern,,forest",
	}
	for _, in := range inputs {
		first := normalize(in)
		assert.Equal(t, first, normalize(first), "normalize must be idempotent for %q", in)
	}
}

func TestSplitWordsTrimsEdges(t *testing.T) {
	assert.Equal(t, []string{"lantern", "oak"}, SplitWords(`'lantern' "oak"`))
	assert.Empty(t, SplitWords(`-- "" ''`))
}
