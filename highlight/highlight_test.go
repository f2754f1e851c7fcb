package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlight(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		terms    []string
		want     string
	}{
		{
			name:     "plain text",
			fragment: "the lantern glows",
			terms:    []string{"lantern"},
			want:     "the <mark>lantern</mark> glows",
		},
		{
			name:     "case insensitive",
			fragment: "Lantern light",
			terms:    []string{"lantern"},
			want:     "<mark>Lantern</mark> light",
		},
		{
			name:     "tags pass through untouched",
			fragment: `<a href="lantern.html">a lantern shop</a>`,
			terms:    []string{"lantern"},
			want:     `<a href="lantern.html">a <mark>lantern</mark> shop</a>`,
		},
		{
			name:     "term matching a tag name is not wrapped inside markup",
			fragment: "<b>foo</b> foobar",
			terms:    []string{"b", "foobar"},
			want:     "<b>foo</b> <mark>foobar</mark>",
		},
		{
			name:     "longest term wins at the same position",
			fragment: "foo foobar",
			terms:    []string{"foo", "foobar"},
			want:     "<mark>foo</mark> <mark>foobar</mark>",
		},
		{
			name:     "regex metacharacters treated literally",
			fragment: "price (today) is 3.50",
			terms:    []string{"(today)", "3.50"},
			want:     "price <mark>(today)</mark> is <mark>3.50</mark>",
		},
		{
			name:     "no terms",
			fragment: "untouched <b>markup</b>",
			terms:    nil,
			want:     "untouched <b>markup</b>",
		},
		{
			name:     "blank terms ignored",
			fragment: "text",
			terms:    []string{"", "  "},
			want:     "text",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Highlight(tt.fragment, tt.terms))
		})
	}
}

func TestHighlightNeverMarksInsideTags(t *testing.T) {
	fragment := `<img src="lantern.png" alt="a lantern"> lantern`
	got := Highlight(fragment, []string{"lantern"})
	assert.True(t, strings.HasPrefix(got, `<img src="lantern.png" alt="a lantern">`),
		"attribute values must not be wrapped: %s", got)
	assert.True(t, strings.HasSuffix(got, "<mark>lantern</mark>"))
}

func TestText(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{"no markup fast path", "plain words", "plain words"},
		{"tags stripped", "<p>first</p><p>second</p>", "firstsecond"},
		{"entities decoded", "fish &amp; chips", "fish & chips"},
		{"nested markup", "<div><b>bold</b> tail</div>", "bold tail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.fragment))
		})
	}
}

func TestSnippet(t *testing.T) {
	t.Run("short text returned whole", func(t *testing.T) {
		assert.Equal(t, "short", Snippet("short", []string{"short"}, 100))
	})

	t.Run("window centered on first match", func(t *testing.T) {
		text := strings.Repeat("x", 200) + " lantern " + strings.Repeat("y", 200)
		got := Snippet(text, []string{"lantern"}, 60)
		assert.Contains(t, got, "lantern")
		assert.True(t, strings.HasPrefix(got, "…"))
		assert.True(t, strings.HasSuffix(got, "…"))
		assert.LessOrEqual(t, len([]rune(got)), 62)
	})

	t.Run("no match falls back to the head", func(t *testing.T) {
		text := "beginning of a long body " + strings.Repeat("z", 200)
		got := Snippet(text, []string{"absent"}, 40)
		assert.True(t, strings.HasPrefix(got, "beginning"))
		assert.True(t, strings.HasSuffix(got, "…"))
	})

	t.Run("match near the end clamps the window", func(t *testing.T) {
		text := strings.Repeat("a", 300) + " lantern"
		got := Snippet(text, []string{"lantern"}, 40)
		assert.Contains(t, got, "lantern")
		assert.True(t, strings.HasPrefix(got, "…"))
		assert.False(t, strings.HasSuffix(got, "…"))
	})

	t.Run("multibyte text cut on rune boundaries", func(t *testing.T) {
		text := strings.Repeat("ü", 100) + "lantern" + strings.Repeat("é", 100)
		got := Snippet(text, []string{"lantern"}, 30)
		assert.Contains(t, got, "lantern")
		for _, r := range got {
			assert.NotEqual(t, '�', r)
		}
	})

	t.Run("zero window yields nothing", func(t *testing.T) {
		assert.Equal(t, "", Snippet("anything", []string{"any"}, 0))
	})

	// Runes whose lower-cased form has a different byte length must not
	// shift the window off the match.
	t.Run("case folding that grows byte length", func(t *testing.T) {
		text := strings.Repeat("Ⱥ", 80) + " lantern " + strings.Repeat("Ⱥ", 80)
		got := Snippet(text, []string{"lantern"}, 30)
		assert.Contains(t, got, "lantern")
	})

	t.Run("case folding that shrinks byte length", func(t *testing.T) {
		text := strings.Repeat("K", 80) + " lantern " + strings.Repeat("K", 80)
		got := Snippet(text, []string{"lantern"}, 30)
		assert.Contains(t, got, "lantern")
	})
}
