// Package highlight renders search hits for display: markup-safe term
// highlighting over HTML fragments and rune-safe preview snippets centered
// on the first match.
package highlight
